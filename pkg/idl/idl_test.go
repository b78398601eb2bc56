package idl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatedSize_MatchesDeployedProgram(t *testing.T) {
	assert.Equal(t, AccountSize["reporter"], AllocatedSize(AccountReporter))
	assert.Equal(t, AccountSize["case"], AllocatedSize(AccountCase))
	assert.Equal(t, 174, AllocatedSize(AccountAddress))
	assert.Equal(t, 206, AllocatedSize(AccountAsset))
	assert.Equal(t, 123, AllocatedSize(AccountConfirmation))
}

func TestReporterAccountOffset(t *testing.T) {
	assert.Equal(t, 59, ReporterAccountOffset)
	assert.Equal(t, 27, ReporterNetworkOffset)
}

func TestInstructionIndex(t *testing.T) {
	for i, name := range InstructionNames {
		sighash := InstructionSighash(name)
		data := append(sighash[:], 1, 2, 3)
		got, ok := InstructionIndex(data)
		require.True(t, ok, name)
		assert.Equal(t, i, got)
	}

	_, ok := InstructionIndex([]byte{1, 2, 3})
	assert.False(t, ok)

	unknown := InstructionSighash("unknown_instruction")
	_, ok = InstructionIndex(unknown[:])
	assert.False(t, ok)
}

func TestDiscriminator_Distinct(t *testing.T) {
	seen := map[Discriminator]string{}
	for _, name := range []string{AccountNetwork, AccountReporter, AccountCase, AccountAddress, AccountAsset, AccountConfirmation} {
		d := AccountDiscriminator(name)
		_, dup := seen[d]
		assert.False(t, dup, name)
		seen[d] = name
	}
}

func TestLookupProgramError(t *testing.T) {
	e, ok := LookupProgramError(6016)
	require.True(t, ok)
	assert.Equal(t, "RiskOutOfRange", e.Name)

	_, ok = LookupProgramError(5999)
	assert.False(t, ok)
	_, ok = LookupProgramError(6017)
	assert.False(t, ok)
}

func TestABIs_AreValidJSON(t *testing.T) {
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(HapiCoreABI), &entries))
	assert.NotEmpty(t, entries)
	require.NoError(t, json.Unmarshal([]byte(ERC20ABI), &entries))
}
