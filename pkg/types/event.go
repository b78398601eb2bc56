package types

import "encoding/json"

// EventName identifies a contract state change
type EventName uint8

const (
	EventInitialize EventName = iota
	EventSetAuthority
	EventUpdateStakeConfiguration
	EventUpdateRewardConfiguration
	EventCreateReporter
	EventUpdateReporter
	EventActivateReporter
	EventDeactivateReporter
	EventUnstake
	EventCreateCase
	EventUpdateCase
	EventCreateAddress
	EventUpdateAddress
	EventConfirmAddress
	EventCreateAsset
	EventUpdateAsset
	EventConfirmAsset
)

var eventNames = []string{
	"initialize",
	"set_authority",
	"update_stake_configuration",
	"update_reward_configuration",
	"create_reporter",
	"update_reporter",
	"activate_reporter",
	"deactivate_reporter",
	"unstake",
	"create_case",
	"update_case",
	"create_address",
	"update_address",
	"confirm_address",
	"create_asset",
	"update_asset",
	"confirm_asset",
}

// EVM contracts emit these event names
var evmEventNames = map[string]EventName{
	"Initialized":                EventInitialize,
	"AuthorityChanged":           EventSetAuthority,
	"StakeConfigurationChanged":  EventUpdateStakeConfiguration,
	"RewardConfigurationChanged": EventUpdateRewardConfiguration,
	"ReporterCreated":            EventCreateReporter,
	"ReporterUpdated":            EventUpdateReporter,
	"ReporterActivated":          EventActivateReporter,
	"ReporterDeactivated":        EventDeactivateReporter,
	"ReporterStakeWithdrawn":     EventUnstake,
	"ReporterUnstaked":           EventUnstake,
	"CaseCreated":                EventCreateCase,
	"CaseUpdated":                EventUpdateCase,
	"AddressCreated":             EventCreateAddress,
	"AddressUpdated":             EventUpdateAddress,
	"AddressConfirmed":           EventConfirmAddress,
	"AssetCreated":               EventCreateAsset,
	"AssetUpdated":               EventUpdateAsset,
	"AssetConfirmed":             EventConfirmAsset,
}

// EventNames lists every event in instruction order
func EventNames() []EventName {
	out := make([]EventName, len(eventNames))
	for i := range eventNames {
		out[i] = EventName(i)
	}
	return out
}

func (e EventName) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

// ParseEventName parses a snake_case or an EVM event name
func ParseEventName(s string) (EventName, error) {
	for i, name := range eventNames {
		if name == s {
			return EventName(i), nil
		}
	}
	if e, ok := evmEventNames[s]; ok {
		return e, nil
	}
	return 0, NewError(KindInvalidData, "unknown event %q", s)
}

// EventNameFromIndex maps an instruction index to its event
func EventNameFromIndex(i int) (EventName, error) {
	if i < 0 || i >= len(eventNames) {
		return 0, NewError(KindInvalidData, "unknown event index %d", i)
	}
	return EventName(i), nil
}

// Entity returns the kind of entity the event touches, or "" when it carries none
func (e EventName) Entity() EntityKind {
	switch e {
	case EventCreateReporter, EventUpdateReporter, EventActivateReporter, EventDeactivateReporter, EventUnstake:
		return EntityReporter
	case EventCreateCase, EventUpdateCase:
		return EntityCase
	case EventCreateAddress, EventUpdateAddress:
		return EntityAddress
	case EventCreateAsset, EventUpdateAsset:
		return EntityAsset
	default:
		return ""
	}
}

func (e EventName) MarshalJSON() ([]byte, error) { return json.Marshal(e.String()) }

func (e *EventName) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, func(s string) error {
		v, err := ParseEventName(s)
		*e = v
		return err
	})
}

// EntityKind names an indexed entity type
type EntityKind string

const (
	EntityReporter EntityKind = "Reporter"
	EntityCase     EntityKind = "Case"
	EntityAddress  EntityKind = "Address"
	EntityAsset    EntityKind = "Asset"
)
