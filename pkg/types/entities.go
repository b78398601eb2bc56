package types

// MaxRisk is the highest risk score
const MaxRisk uint8 = 10

// Reporter is a registered participant
type Reporter struct {
	ID              UUID           `json:"id"`
	Account         string         `json:"account"`
	Role            ReporterRole   `json:"role"`
	Status          ReporterStatus `json:"status"`
	Name            string         `json:"name"`
	URL             string         `json:"url"`
	Stake           Amount         `json:"stake"`
	UnlockTimestamp uint64         `json:"unlock_timestamp"`
}

// Case is an investigation opened by a reporter
type Case struct {
	ID         UUID       `json:"id"`
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	Status     CaseStatus `json:"status"`
	ReporterID UUID       `json:"reporter_id"`
}

// Address is a reported address
type Address struct {
	Address       string   `json:"address"`
	CaseID        UUID     `json:"case_id"`
	ReporterID    UUID     `json:"reporter_id"`
	Risk          uint8    `json:"risk"`
	Category      Category `json:"category"`
	Confirmations uint64   `json:"confirmations"`
}

// Asset is a reported token or NFT
type Asset struct {
	Address       string   `json:"address"`
	AssetID       string   `json:"asset_id"`
	CaseID        UUID     `json:"case_id"`
	ReporterID    UUID     `json:"reporter_id"`
	Risk          uint8    `json:"risk"`
	Category      Category `json:"category"`
	Confirmations uint64   `json:"confirmations"`
}

// StakeConfiguration holds the stake token and the per-role stake
type StakeConfiguration struct {
	Token          string `json:"token"`
	UnlockDuration uint64 `json:"unlock_duration"`
	ValidatorStake Amount `json:"validator_stake"`
	TracerStake    Amount `json:"tracer_stake"`
	PublisherStake Amount `json:"publisher_stake"`
	AuthorityStake Amount `json:"authority_stake"`
}

// StakeFor returns the stake required for role; appraisers have none
func (c StakeConfiguration) StakeFor(role ReporterRole) Amount {
	switch role {
	case RoleValidator:
		return c.ValidatorStake
	case RoleTracer:
		return c.TracerStake
	case RolePublisher:
		return c.PublisherStake
	case RoleAuthority:
		return c.AuthorityStake
	default:
		return Amount{}
	}
}

// RewardConfiguration holds the reward token and per-action rewards
type RewardConfiguration struct {
	Token                     string `json:"token"`
	AddressConfirmationReward Amount `json:"address_confirmation_reward"`
	AddressTracerReward       Amount `json:"address_tracer_reward"`
	AssetConfirmationReward   Amount `json:"asset_confirmation_reward"`
	AssetTracerReward         Amount `json:"asset_tracer_reward"`
}

// Tx is a submitted transaction
type Tx struct {
	Hash string `json:"hash"`
}
