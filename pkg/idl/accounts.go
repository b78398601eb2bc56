package idl

// Account names as declared by the program
const (
	AccountNetwork      = "Network"
	AccountReporter     = "Reporter"
	AccountCase         = "Case"
	AccountAddress      = "Address"
	AccountAsset        = "Asset"
	AccountConfirmation = "Confirmation"
)

// AccountReserveSpace is the spare space allocated after every account
const AccountReserveSpace = 32

// Maximum serialized string lengths
const (
	MaxNameLength = 128
	MaxURLLength  = 128
)

// Fixed byte widths
const (
	PubkeyLength  = 32
	AddressLength = 64
	AssetIDLength = 64
	NameSeedLen   = 32
)

// AccountLen is the declared data length of each account, discriminator included
var AccountLen = map[string]int{
	AccountNetwork:      DiscriminatorLength + (2 + 1 + 32 + 1 + 32 + 40 + 32 + 32 + 8),
	AccountReporter:     DiscriminatorLength + (2 + 1 + 16 + 32 + 32 + MaxNameLength + 1 + 1 + 8 + 8 + MaxURLLength),
	AccountCase:         DiscriminatorLength + (2 + 1 + 16 + 32 + MaxNameLength + 32 + 1 + MaxURLLength),
	AccountAddress:      DiscriminatorLength + (2 + 1 + 32 + 64 + 1 + 1 + 16 + 16 + 1),
	AccountAsset:        DiscriminatorLength + (2 + 1 + 32 + 64 + 32 + 1 + 1 + 16 + 16 + 1),
	AccountConfirmation: DiscriminatorLength + (2 + 1 + 32 + 32 + 16),
}

// AllocatedSize is the on-chain data size of an account: its length plus the reserve
func AllocatedSize(account string) int {
	return AccountLen[account] + AccountReserveSpace
}

// ACCOUNT_SIZE of the deployed program, as measured on-chain
var AccountSize = map[string]int{
	"network":  251,
	"reporter": 397,
	"case":     380,
}

// LegacyAccountSize is the ACCOUNT_SIZE table of the community-based program
var LegacyAccountSize = map[string]int{
	"address":          222,
	"addressV0":        184,
	"asset":            254,
	"assetV0":          216,
	"case":             148,
	"caseV0":           120,
	"community":        172,
	"communityV0":      192,
	"network":          180,
	"networkV0":        176,
	"reporter":         158,
	"reporterV0":       128,
	"reporterReward":   139,
	"reporterRewardV0": 112,
}

// Byte offsets used by getProgramAccounts memcmp filters
const (
	// network pubkey follows version, bump and id
	ReporterNetworkOffset = DiscriminatorLength + 2 + 1 + 16
	// account pubkey follows the network
	ReporterAccountOffset = ReporterNetworkOffset + PubkeyLength
	CaseNetworkOffset     = DiscriminatorLength + 2 + 1 + 16
	AddressNetworkOffset  = DiscriminatorLength + 2 + 1
	AssetNetworkOffset    = DiscriminatorLength + 2 + 1
)
