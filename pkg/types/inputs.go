package types

import (
	"net/url"
	"strings"
)

// CreateReporterInput creates a reporter
type CreateReporterInput struct {
	ID      UUID         `json:"id"`
	Account string       `json:"account"`
	Role    ReporterRole `json:"role"`
	Name    string       `json:"name"`
	URL     string       `json:"url"`
}

// UpdateReporterInput updates a reporter
type UpdateReporterInput CreateReporterInput

// CreateCaseInput creates a case
type CreateCaseInput struct {
	ID   UUID   `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// UpdateCaseInput updates a case
type UpdateCaseInput struct {
	ID     UUID       `json:"id"`
	Name   string     `json:"name"`
	URL    string     `json:"url"`
	Status CaseStatus `json:"status"`
}

// CreateAddressInput reports an address
type CreateAddressInput struct {
	Address  string   `json:"address"`
	CaseID   UUID     `json:"case_id"`
	Risk     uint8    `json:"risk"`
	Category Category `json:"category"`
}

// UpdateAddressInput updates a reported address
type UpdateAddressInput CreateAddressInput

// CreateAssetInput reports an asset
type CreateAssetInput struct {
	Address  string   `json:"address"`
	AssetID  string   `json:"asset_id"`
	CaseID   UUID     `json:"case_id"`
	Risk     uint8    `json:"risk"`
	Category Category `json:"category"`
}

// UpdateAssetInput updates a reported asset
type UpdateAssetInput CreateAssetInput

// Validate checks the reporter fields
func (in CreateReporterInput) Validate() error {
	if in.ID.IsNil() {
		return NewError(KindUUID, "reporter id must not be nil")
	}
	if strings.TrimSpace(in.Account) == "" {
		return NewError(KindInvalidData, "reporter account must not be empty")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewError(KindInvalidData, "reporter name must not be empty")
	}
	return ValidateURL(in.URL)
}

// Validate checks the reporter fields
func (in UpdateReporterInput) Validate() error { return CreateReporterInput(in).Validate() }

// Validate checks the case fields
func (in CreateCaseInput) Validate() error {
	if in.ID.IsNil() {
		return NewError(KindUUID, "case id must not be nil")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewError(KindInvalidData, "case name must not be empty")
	}
	return ValidateURL(in.URL)
}

// Validate checks the case fields
func (in UpdateCaseInput) Validate() error {
	return CreateCaseInput{ID: in.ID, Name: in.Name, URL: in.URL}.Validate()
}

// Validate checks the address fields
func (in CreateAddressInput) Validate() error {
	if strings.TrimSpace(in.Address) == "" {
		return NewError(KindInvalidData, "address must not be empty")
	}
	if in.CaseID.IsNil() {
		return NewError(KindUUID, "case id must not be nil")
	}
	return ValidateRisk(in.Risk)
}

// Validate checks the address fields
func (in UpdateAddressInput) Validate() error { return CreateAddressInput(in).Validate() }

// Validate checks the asset fields
func (in CreateAssetInput) Validate() error {
	if strings.TrimSpace(in.AssetID) == "" {
		return NewError(KindAssetIDParse, "asset id must not be empty")
	}
	return CreateAddressInput{Address: in.Address, CaseID: in.CaseID, Risk: in.Risk}.Validate()
}

// Validate checks the asset fields
func (in UpdateAssetInput) Validate() error { return CreateAssetInput(in).Validate() }

// ValidateRisk checks the risk score range
func ValidateRisk(risk uint8) error {
	if risk > MaxRisk {
		return NewError(KindInvalidData, "risk %d is out of range 0..%d", risk, MaxRisk)
	}
	return nil
}

// ValidateURL checks that s is an absolute URL
func ValidateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return WrapError(KindURLParse, err, "invalid url %q", s)
	}
	if u.Scheme == "" || u.Host == "" {
		return NewError(KindURLParse, "invalid url %q", s)
	}
	return nil
}
