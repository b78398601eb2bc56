package idl

// ProgramErrorOffset is the first custom Anchor error code
const ProgramErrorOffset = 6000

// ProgramError is a custom program error
type ProgramError struct {
	Code    uint32
	Name    string
	Message string
}

// ProgramErrors lists the program errors in code order
var ProgramErrors = []ProgramError{
	{6000, "InvalidToken", "Invalid token account"},
	{6001, "AuthorityMismatch", "Authority mismatched"},
	{6002, "IllegalOwner", "Account has illegal owner"},
	{6003, "InvalidProgramData", "Invalid program data account"},
	{6004, "InvalidProgramAccount", "Invalid program account"},
	{6005, "InvalidReporter", "Invalid reporter account"},
	{6006, "InvalidReporterStatus", "Invalid reporter status"},
	{6007, "InactiveReporter", "Reporter account is not active"},
	{6008, "FrozenReporter", "This reporter is frozen"},
	{6009, "ReleaseEpochInFuture", "Release epoch is in future"},
	{6010, "UpdatedMint", "Mint has already been updated"},
	{6011, "Unauthorized", "Account is not authorized to perform this action"},
	{6012, "InvalidUUID", "Invalid UUID"},
	{6013, "InvalidData", "Invalid Data"},
	{6014, "CaseClosed", "Case closed"},
	{6015, "CaseMismatch", "Case mismatched"},
	{6016, "RiskOutOfRange", "Risk score must be in 0..10 range"},
}

// LookupProgramError resolves a custom error code
func LookupProgramError(code uint32) (ProgramError, bool) {
	if code < ProgramErrorOffset || int(code-ProgramErrorOffset) >= len(ProgramErrors) {
		return ProgramError{}, false
	}
	return ProgramErrors[code-ProgramErrorOffset], true
}

// EVM revert reasons emitted by the HapiCore contract
var EVMRevertReasons = []string{
	"Caller is not the authority",
	"Caller is not a reporter",
	"Caller is not a reporter with the required role",
	"Reporter is not publisher or validator",
	"Must be the case reporter or authority",
	"Tracer can't change case",
	"Cannot confirm the address reported by himself",
	"The reporter has already confirmed the address",
	"ERC20: insufficient allowance",
	"ERC20: transfer amount exceeds balance",
}
