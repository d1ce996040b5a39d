package world

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActionType identifies what an interactive zone does on enter/exit. The set
// is closed; editors sending anything else get the zone demoted to
// ActionNone at the store boundary.
type ActionType string

const (
	ActionNone            ActionType = "none"
	ActionAlert           ActionType = "alert"
	ActionURL             ActionType = "url"
	ActionModal           ActionType = "modal"
	ActionVideoConference ActionType = "video-conference"
	ActionCollectible     ActionType = "collectible"
	ActionSwitch          ActionType = "switch"
	ActionImpassable      ActionType = "impassable"
)

// ActionConfig is the per-action payload. The concrete type is fixed by the
// zone's ActionType; decodeActionConfig enforces the pairing.
type ActionConfig interface {
	actionType() ActionType
}

// VideoConferenceConfig controls the video-conference action. The auto
// flags default to true when absent.
type VideoConferenceConfig struct {
	RoomName        string `json:"roomName"`
	AutoJoinOnEntry *bool  `json:"autoJoinOnEntry,omitempty"`
	AutoLeaveOnExit *bool  `json:"autoLeaveOnExit,omitempty"`
}

func (VideoConferenceConfig) actionType() ActionType { return ActionVideoConference }

// AutoJoin reports whether entering the zone should join the call.
func (c VideoConferenceConfig) AutoJoin() bool {
	return c.AutoJoinOnEntry == nil || *c.AutoJoinOnEntry
}

// AutoLeave reports whether exiting the zone should leave the call.
func (c VideoConferenceConfig) AutoLeave() bool {
	return c.AutoLeaveOnExit == nil || *c.AutoLeaveOnExit
}

// AlertConfig shows a transient message on entry.
type AlertConfig struct {
	Message    string `json:"message"`
	AlertType  string `json:"alertType"`
	DurationMs int64  `json:"duration"`
}

func (AlertConfig) actionType() ActionType { return ActionAlert }

// URLOpenMode selects how a url action is presented.
type URLOpenMode string

const (
	OpenNewTab   URLOpenMode = "new-tab"
	OpenSameTab  URLOpenMode = "same-tab"
	OpenEmbedded URLOpenMode = "embedded"
)

// URLConfig navigates on entry.
type URLConfig struct {
	URL      string      `json:"url"`
	OpenMode URLOpenMode `json:"openMode"`
}

func (URLConfig) actionType() ActionType { return ActionURL }

// ModalConfig shows a modal on entry.
type ModalConfig struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ShowOnEntry bool   `json:"showOnEntry"`
}

func (ModalConfig) actionType() ActionType { return ActionModal }

// CollectibleConfig grants an effect on entry.
type CollectibleConfig struct {
	EffectType  string  `json:"effectType"`
	EffectValue float64 `json:"effectValue"`
	Feedback    string  `json:"feedback,omitempty"`
}

func (CollectibleConfig) actionType() ActionType { return ActionCollectible }

// SwitchToggleMode selects how targets respond to a switch.
type SwitchToggleMode string

const (
	ToggleFlip SwitchToggleMode = "flip"
	ToggleOn   SwitchToggleMode = "on"
	ToggleOff  SwitchToggleMode = "off"
)

// SwitchConfig toggles other elements on entry.
type SwitchConfig struct {
	TargetIDs  []string         `json:"targetIds"`
	ToggleMode SwitchToggleMode `json:"toggleMode"`
}

func (SwitchConfig) actionType() ActionType { return ActionSwitch }

// decodeActionConfig resolves the raw config payload against the declared
// action type. Actions without a payload (none, impassable) must have a
// null or absent config.
func decodeActionConfig(action ActionType, raw json.RawMessage) (ActionConfig, error) {
	empty := len(raw) == 0 || string(raw) == "null"

	switch action {
	case ActionNone, ActionImpassable, "":
		if !empty {
			return nil, fmt.Errorf("action %q carries a config payload", action)
		}
		return nil, nil
	case ActionAlert:
		return decodeInto[AlertConfig](action, raw, empty)
	case ActionURL:
		return decodeInto[URLConfig](action, raw, empty)
	case ActionModal:
		return decodeInto[ModalConfig](action, raw, empty)
	case ActionVideoConference:
		return decodeInto[VideoConferenceConfig](action, raw, empty)
	case ActionCollectible:
		return decodeInto[CollectibleConfig](action, raw, empty)
	case ActionSwitch:
		return decodeInto[SwitchConfig](action, raw, empty)
	default:
		return nil, fmt.Errorf("unknown action type %q", action)
	}
}

func decodeInto[T ActionConfig](action ActionType, raw json.RawMessage, empty bool) (ActionConfig, error) {
	if empty {
		return nil, fmt.Errorf("action %q is missing its config", action)
	}
	var cfg T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding %s config: %w", action, err)
	}
	return cfg, nil
}
