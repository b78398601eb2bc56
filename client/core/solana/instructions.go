package solana

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/hapi-protocol/hapi-core/pkg/idl"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Instruction arguments, Borsh-encoded after the instruction sighash

type CreateNetworkData struct {
	Name       [32]byte
	Schema     uint8
	StakeInfo  StakeInfo
	RewardInfo RewardInfo
	Bump       uint8
}

type CreateReporterData struct {
	ReporterID u128
	Account    solana.PublicKey
	Name       string
	Role       uint8
	URL        string
	Bump       uint8
}

type UpdateReporterData struct {
	Account solana.PublicKey
	Name    string
	Role    uint8
	URL     string
}

type CreateCaseData struct {
	CaseID u128
	Name   string
	URL    string
	Bump   uint8
}

type UpdateCaseData struct {
	Name   string
	URL    string
	Status uint8
}

type CreateAddressData struct {
	Address  [idl.AddressLength]byte
	Category uint8
	Risk     uint8
	Bump     uint8
}

type UpdateAddressData struct {
	Category uint8
	Risk     uint8
}

type CreateAssetData struct {
	Address  [idl.AddressLength]byte
	AssetID  [idl.AssetIDLength]byte
	Category uint8
	Risk     uint8
	Bump     uint8
}

type UpdateAssetData struct {
	Category uint8
	Risk     uint8
}

type ConfirmData struct {
	Bump uint8
}

// builder assembles program instructions for one network
type builder struct {
	programID solana.PublicKey
	network   solana.PublicKey
}

func (b builder) instruction(name string, args any, accounts ...*solana.AccountMeta) (solana.Instruction, error) {
	data := idl.InstructionSighash(name)
	out := append([]byte(nil), data[:]...)
	if args != nil {
		body, err := bin.MarshalBorsh(args)
		if err != nil {
			return nil, types.WrapError(types.KindInvalidData, err, "encode %s", name)
		}
		out = append(out, body...)
	}
	return solana.NewInstruction(b.programID, accounts, out), nil
}

func signer(key solana.PublicKey) *solana.AccountMeta { return solana.Meta(key).WRITE().SIGNER() }
func writable(key solana.PublicKey) *solana.AccountMeta {
	return solana.Meta(key).WRITE()
}
func readonly(key solana.PublicKey) *solana.AccountMeta { return solana.Meta(key) }

func (b builder) CreateNetwork(authority, stakeMint, rewardMint solana.PublicKey, args CreateNetworkData) (solana.Instruction, error) {
	programData, _, err := FindProgramDataAddress(b.programID)
	if err != nil {
		return nil, err
	}
	return b.instruction("create_network", args,
		signer(authority),
		writable(b.network),
		readonly(rewardMint),
		readonly(stakeMint),
		readonly(b.programID),
		readonly(programData),
		readonly(solana.SystemProgramID),
	)
}

func (b builder) SetAuthority(authority, newAuthority solana.PublicKey) (solana.Instruction, error) {
	programData, _, err := FindProgramDataAddress(b.programID)
	if err != nil {
		return nil, err
	}
	return b.instruction("set_authority", nil,
		solana.Meta(authority).SIGNER(),
		writable(b.network),
		readonly(newAuthority),
		readonly(b.programID),
		readonly(programData),
	)
}

func (b builder) UpdateStakeConfiguration(authority, stakeMint solana.PublicKey, info StakeInfo) (solana.Instruction, error) {
	return b.instruction("update_stake_configuration", info,
		solana.Meta(authority).SIGNER(),
		writable(b.network),
		readonly(stakeMint),
	)
}

func (b builder) UpdateRewardConfiguration(authority, rewardMint solana.PublicKey, info RewardInfo) (solana.Instruction, error) {
	return b.instruction("update_reward_configuration", info,
		solana.Meta(authority).SIGNER(),
		writable(b.network),
		readonly(rewardMint),
	)
}

func (b builder) CreateReporter(authority, reporter solana.PublicKey, args CreateReporterData) (solana.Instruction, error) {
	return b.instruction("create_reporter", args,
		signer(authority),
		readonly(b.network),
		writable(reporter),
		readonly(solana.SystemProgramID),
	)
}

func (b builder) UpdateReporter(authority, reporter solana.PublicKey, args UpdateReporterData) (solana.Instruction, error) {
	return b.instruction("update_reporter", args,
		signer(authority),
		readonly(b.network),
		writable(reporter),
	)
}

// stakeTransfer builds activate_reporter and unstake, which move stake between the two token accounts
func (b builder) stakeTransfer(name string, owner, reporter, stakeMint solana.PublicKey) (solana.Instruction, error) {
	networkATA, _, err := solana.FindAssociatedTokenAddress(b.network, stakeMint)
	if err != nil {
		return nil, types.WrapError(types.KindSolanaAddressParse, err, "network token account")
	}
	reporterATA, _, err := solana.FindAssociatedTokenAddress(owner, stakeMint)
	if err != nil {
		return nil, types.WrapError(types.KindSolanaAddressParse, err, "reporter token account")
	}
	return b.instruction(name, nil,
		signer(owner),
		readonly(b.network),
		writable(reporter),
		writable(networkATA),
		writable(reporterATA),
		readonly(solana.TokenProgramID),
	)
}

func (b builder) ActivateReporter(owner, reporter, stakeMint solana.PublicKey) (solana.Instruction, error) {
	return b.stakeTransfer("activate_reporter", owner, reporter, stakeMint)
}

func (b builder) Unstake(owner, reporter, stakeMint solana.PublicKey) (solana.Instruction, error) {
	return b.stakeTransfer("unstake", owner, reporter, stakeMint)
}

func (b builder) DeactivateReporter(owner, reporter solana.PublicKey) (solana.Instruction, error) {
	return b.instruction("deactivate_reporter", nil,
		signer(owner),
		readonly(b.network),
		writable(reporter),
	)
}

func (b builder) CreateCase(sender, reporter, caseAddr solana.PublicKey, args CreateCaseData) (solana.Instruction, error) {
	return b.instruction("create_case", args,
		signer(sender),
		readonly(b.network),
		readonly(reporter),
		writable(caseAddr),
		readonly(solana.SystemProgramID),
	)
}

func (b builder) UpdateCase(sender, reporter, caseAddr solana.PublicKey, args UpdateCaseData) (solana.Instruction, error) {
	return b.instruction("update_case", args,
		signer(sender),
		readonly(b.network),
		readonly(reporter),
		writable(caseAddr),
		readonly(solana.SystemProgramID),
	)
}

// entity builds the address and asset writes: sender, network, reporter, case, entity
func (b builder) entity(name string, args any, sender, reporter, caseAddr, entity solana.PublicKey) (solana.Instruction, error) {
	return b.instruction(name, args,
		signer(sender),
		readonly(b.network),
		readonly(reporter),
		readonly(caseAddr),
		writable(entity),
		readonly(solana.SystemProgramID),
	)
}

func (b builder) confirm(name string, bump uint8, sender, reporter, caseAddr, entity, confirmation solana.PublicKey) (solana.Instruction, error) {
	return b.instruction(name, ConfirmData{Bump: bump},
		signer(sender),
		readonly(b.network),
		readonly(reporter),
		readonly(caseAddr),
		writable(entity),
		writable(confirmation),
		readonly(solana.SystemProgramID),
	)
}
