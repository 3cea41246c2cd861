package domain

// TriggerKind is the family of a cross-process message.
type TriggerKind string

const (
	// TriggerMediaKey delivers a media key event to the audio service
	TriggerMediaKey TriggerKind = "media_key"
	// TriggerBackgroundAction delivers a scheme URI to the app without bringing it forward
	TriggerBackgroundAction TriggerKind = "background_action"
	// TriggerLaunch brings the app task to the foreground
	TriggerLaunch TriggerKind = "launch"
)

// DispatchMode is how the host should deliver a trigger.
type DispatchMode string

const (
	DispatchForegroundService DispatchMode = "foreground_service"
	DispatchService           DispatchMode = "service"
	DispatchBroadcast         DispatchMode = "broadcast"
	DispatchActivity          DispatchMode = "activity"
)

// KeyCode is a media key code as used by the host input system.
type KeyCode int

const (
	KeyMediaPlayPause KeyCode = 85
	KeyMediaNext      KeyCode = 87
	KeyMediaPrevious  KeyCode = 88
)

// LaunchFlags control how a launch trigger treats an existing task.
type LaunchFlags uint32

const (
	FlagNewTask LaunchFlags = 1 << iota
	FlagSingleTop
	FlagClearTop
)

// Has reports whether all bits of f are set.
func (l LaunchFlags) Has(f LaunchFlags) bool {
	return l&f == f
}

// Trigger describes an outbound cross-process message.
type Trigger struct {
	Kind        TriggerKind  `yaml:"kind"`
	Mode        DispatchMode `yaml:"mode"`
	Target      string       `yaml:"target"`
	Action      string       `yaml:"action,omitempty"`
	Categories  []string     `yaml:"categories,omitempty"`
	KeyCode     KeyCode      `yaml:"key_code,omitempty"`
	RequestCode int          `yaml:"request_code"`
	Flags       LaunchFlags  `yaml:"flags,omitempty"`
	// UniqueKey keeps repeated identical triggers from being collapsed by the host
	UniqueKey string `yaml:"unique_key,omitempty"`
}
