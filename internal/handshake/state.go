package handshake

// State is a step of the configuration handshake.
type State int

const (
	StateIdle State = iota
	StateConfigurationRequested
	StateAcknowledged
	StateRedirected
	StateConsumed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConfigurationRequested:
		return "ConfigurationRequested"
	case StateAcknowledged:
		return "Acknowledged"
	case StateRedirected:
		return "Redirected"
	case StateConsumed:
		return "Consumed"
	default:
		return "Unknown"
	}
}
