package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPlain, false},
		{"plain", FormatPlain, false},
		{"text", FormatPlain, false},
		{"JSON", FormatJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatter_PlainTx(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatPlain, &buf)
	require.NoError(t, f.Print(types.Tx{Hash: "0xabc"}))
	assert.Equal(t, "0xabc\n", buf.String())
}

func TestFormatter_PlainScalar(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatPlain, &buf)
	require.NoError(t, f.Print(uint64(42)))
	require.NoError(t, f.Print(types.NewAmount(7)))
	assert.Equal(t, "42\n7\n", buf.String())
}

func TestFormatter_PlainRecordKeepsFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatPlain, &buf)
	require.NoError(t, f.Print(types.Case{
		ID:     types.MustParseUUID("00000000-0000-0000-0000-000000000001"),
		Name:   "case one",
		URL:    "https://hapi.one/case/1",
		Status: types.CaseOpen,
	}))

	out := buf.String()
	assert.Contains(t, out, "name:")
	assert.Contains(t, out, "case one")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("id:")), bytes.Index(buf.Bytes(), []byte("name:")))
	assert.Contains(t, out, "Open")
}

func TestFormatter_PlainList(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatPlain, &buf)
	require.NoError(t, f.Print([]types.Address{{Address: "0x1", Risk: 1}, {Address: "0x2", Risk: 2}}))
	assert.Contains(t, buf.String(), "0x1")
	assert.Contains(t, buf.String(), "0x2")
	assert.Contains(t, buf.String(), "\n\n")
}

func TestFormatter_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatJSON, &buf)
	require.NoError(t, f.Print(types.Tx{Hash: "0xabc"}))
	assert.JSONEq(t, `{"data":{"hash":"0xabc"}}`, buf.String())

	buf.Reset()
	require.NoError(t, f.Print(uint64(3)))
	assert.JSONEq(t, `{"data":3}`, buf.String())
}

func TestFormatter_PrintError(t *testing.T) {
	var out, log bytes.Buffer
	f := NewFormatter(FormatJSON, &out)
	f.SetLogWriter(&log)
	f.PrintError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", log.String())
	assert.Empty(t, out.String())
}

func TestFormatter_Silent(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatPlain, &buf)
	f.SetSilent(true)
	require.NoError(t, f.Print("hidden"))
	assert.Empty(t, buf.String())
}
