package proto

// State is a client connection state.
type State int

// States the client connection can be in.
const (
	HandshakeState State = iota
	StatusState
	LoginState
	ConfigurationState
	PlayState
)

// States lists all known states in protocol order.
var States = []State{HandshakeState, StatusState, LoginState, ConfigurationState, PlayState}

func (s State) String() string {
	switch s {
	case HandshakeState:
		return "Handshake"
	case StatusState:
		return "Status"
	case LoginState:
		return "Login"
	case ConfigurationState:
		return "Configuration"
	case PlayState:
		return "Play"
	}
	return "UnknownState"
}

// transitions is the directed graph of legal state changes.
var transitions = map[State][]State{
	HandshakeState:     {StatusState, LoginState},
	LoginState:         {ConfigurationState},
	ConfigurationState: {PlayState},
	PlayState:          {ConfigurationState}, // reconfiguration
}

// CanTransition reports whether a connection in state s may move to next.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
