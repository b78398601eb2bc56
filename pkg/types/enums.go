package types

import (
	"encoding/json"
	"strings"
)

// ReporterRole is the role a reporter is registered with
type ReporterRole uint8

const (
	RoleValidator ReporterRole = iota
	RoleTracer
	RolePublisher
	RoleAuthority
	RoleAppraiser
)

var reporterRoleNames = []string{"Validator", "Tracer", "Publisher", "Authority", "Appraiser"}

func (r ReporterRole) String() string { return enumName(reporterRoleNames, uint8(r)) }

// ParseReporterRole parses a role name, case-insensitively
func ParseReporterRole(s string) (ReporterRole, error) {
	v, err := parseEnum("reporter role", reporterRoleNames, s)
	return ReporterRole(v), err
}

// ReporterRoleFromByte validates an on-chain role discriminant
func ReporterRoleFromByte(b uint8) (ReporterRole, error) {
	if int(b) >= len(reporterRoleNames) {
		return 0, NewError(KindContractData, "invalid reporter role %d", b)
	}
	return ReporterRole(b), nil
}

func (r ReporterRole) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

func (r *ReporterRole) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, func(s string) error {
		v, err := ParseReporterRole(s)
		*r = v
		return err
	})
}

// ReporterStatus is the activation state of a reporter
type ReporterStatus uint8

const (
	StatusInactive ReporterStatus = iota
	StatusActive
	StatusUnstaking
)

var reporterStatusNames = []string{"Inactive", "Active", "Unstaking"}

func (s ReporterStatus) String() string { return enumName(reporterStatusNames, uint8(s)) }

// ParseReporterStatus parses a status name
func ParseReporterStatus(s string) (ReporterStatus, error) {
	v, err := parseEnum("reporter status", reporterStatusNames, s)
	return ReporterStatus(v), err
}

// ReporterStatusFromByte validates an on-chain status discriminant
func ReporterStatusFromByte(b uint8) (ReporterStatus, error) {
	if int(b) >= len(reporterStatusNames) {
		return 0, NewError(KindContractData, "invalid reporter status %d", b)
	}
	return ReporterStatus(b), nil
}

func (s ReporterStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *ReporterStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, func(str string) error {
		v, err := ParseReporterStatus(str)
		*s = v
		return err
	})
}

// CaseStatus tells whether a case accepts new reports
type CaseStatus uint8

const (
	CaseClosed CaseStatus = iota
	CaseOpen
)

var caseStatusNames = []string{"Closed", "Open"}

func (s CaseStatus) String() string { return enumName(caseStatusNames, uint8(s)) }

// ParseCaseStatus parses a case status name
func ParseCaseStatus(s string) (CaseStatus, error) {
	v, err := parseEnum("case status", caseStatusNames, s)
	return CaseStatus(v), err
}

// CaseStatusFromByte validates an on-chain case status
func CaseStatusFromByte(b uint8) (CaseStatus, error) {
	if int(b) >= len(caseStatusNames) {
		return 0, NewError(KindContractData, "invalid case status %d", b)
	}
	return CaseStatus(b), nil
}

func (s CaseStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *CaseStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, func(str string) error {
		v, err := ParseCaseStatus(str)
		*s = v
		return err
	})
}

// Category classifies the activity behind an address or asset
type Category uint8

const (
	CategoryNone Category = iota
	CategoryWalletService
	CategoryMerchantService
	CategoryMiningPool
	CategoryExchange
	CategoryDeFi
	CategoryOTCBroker
	CategoryATM
	CategoryGambling
	CategoryIllicitOrganization
	CategoryMixer
	CategoryDarknetService
	CategoryScam
	CategoryRansomware
	CategoryTheft
	CategoryCounterfeit
	CategoryTerroristFinancing
	CategorySanctions
	CategoryChildAbuse
	CategoryHacker
	CategoryHighRiskJurisdiction
)

var categoryNames = []string{
	"None", "WalletService", "MerchantService", "MiningPool", "Exchange", "DeFi", "OTCBroker", "ATM",
	"Gambling", "IllicitOrganization", "Mixer", "DarknetService", "Scam", "Ransomware", "Theft",
	"Counterfeit", "TerroristFinancing", "Sanctions", "ChildAbuse", "Hacker", "HighRiskJurisdiction",
}

func (c Category) String() string { return enumName(categoryNames, uint8(c)) }

// NearName returns the variant name used by the NEAR contract
func (c Category) NearName() string {
	switch c {
	case CategoryOTCBroker:
		return "OtcBroker"
	case CategoryATM:
		return "Atm"
	default:
		return c.String()
	}
}

// ParseCategory parses a category name
func ParseCategory(s string) (Category, error) {
	v, err := parseEnum("category", categoryNames, s)
	return Category(v), err
}

// CategoryFromByte validates an on-chain category
func CategoryFromByte(b uint8) (Category, error) {
	if int(b) >= len(categoryNames) {
		return 0, NewError(KindContractData, "invalid category %d", b)
	}
	return Category(b), nil
}

func (c Category) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

func (c *Category) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, func(s string) error {
		v, err := ParseCategory(s)
		*c = v
		return err
	})
}

// NetworkSchema is the address format family of a network
type NetworkSchema uint8

const (
	SchemaPlain NetworkSchema = iota
	SchemaSolana
	SchemaEthereum
	SchemaBitcoin
	SchemaNear
)

var networkSchemaNames = []string{"Plain", "Solana", "Ethereum", "Bitcoin", "Near"}

func (s NetworkSchema) String() string { return enumName(networkSchemaNames, uint8(s)) }

// ParseNetworkSchema parses a schema name
func ParseNetworkSchema(s string) (NetworkSchema, error) {
	v, err := parseEnum("network schema", networkSchemaNames, s)
	return NetworkSchema(v), err
}

func (s NetworkSchema) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *NetworkSchema) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, func(str string) error {
		v, err := ParseNetworkSchema(str)
		*s = v
		return err
	})
}

func enumName(names []string, v uint8) string {
	if int(v) < len(names) {
		return names[v]
	}
	return "Unknown"
}

// parseEnum matches case-insensitively, so NEAR's "OtcBroker" and "Atm" resolve too.
func parseEnum(what string, names []string, s string) (uint8, error) {
	for i, name := range names {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return uint8(i), nil
		}
	}
	return 0, NewError(KindInvalidData, "invalid %s: %q", what, s)
}

func unmarshalEnum(data []byte, parse func(string) error) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return NewError(KindInvalidData, "expected enum name, got %s", string(data))
	}
	return parse(s)
}
