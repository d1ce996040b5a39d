package action

import "time"

// Intent is a fire-and-forget event toward the UI, video, or navigation
// collaborators. Each qualifying transition produces at most one intent.
type Intent interface {
	IntentName() string
}

// VideoJoin asks the video collaborator to join a conference room.
type VideoJoin struct {
	RoomName string
}

func (VideoJoin) IntentName() string { return "video:join" }

// VideoLeave asks the video collaborator to leave the active conference.
type VideoLeave struct{}

func (VideoLeave) IntentName() string { return "video:leave" }

// AlertShow displays a transient message.
type AlertShow struct {
	Message  string
	Kind     string
	Duration time.Duration
}

func (AlertShow) IntentName() string { return "alert:show" }

// Navigate opens a link in the requested mode.
type Navigate struct {
	URL  string
	Mode string
}

func (Navigate) IntentName() string { return "navigate" }

// ModalShow displays a modal dialog.
type ModalShow struct {
	Title   string
	Content string
}

func (ModalShow) IntentName() string { return "modal:show" }

// Collected reports a collectible pickup with its effect parameters.
type Collected struct {
	ZoneID      string
	EffectType  string
	EffectValue float64
	Feedback    string
}

func (Collected) IntentName() string { return "collectible:collected" }

// SwitchToggled asks for other elements to be toggled.
type SwitchToggled struct {
	TargetIDs  []string
	ToggleMode string
}

func (SwitchToggled) IntentName() string { return "switch:toggled" }
