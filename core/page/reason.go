package page

// Reason explains why a session or its live channel ended abnormally.
// It is delivered to behaviors through OnTerminated.
type Reason uint8

const (
	// ReasonTakenOver means another connection claimed the player's
	// transmission slot and this session was superseded.
	ReasonTakenOver Reason = iota
	// ReasonPlayerDrop means the player disconnected or the level changed.
	ReasonPlayerDrop
	// ReasonUnknownPlayer means a page was sent to an identity the bridge
	// does not track.
	ReasonUnknownPlayer
	// ReasonTransmissionEnd means the live transport closed or a push write
	// failed; only the live instance observes it.
	ReasonTransmissionEnd
	// ReasonSwitchedFrom means the page was replaced by a switch.
	ReasonSwitchedFrom
)

func (r Reason) String() string {
	switch r {
	case ReasonTakenOver:
		return "taken_over"
	case ReasonPlayerDrop:
		return "player_drop"
	case ReasonUnknownPlayer:
		return "unknown_player"
	case ReasonTransmissionEnd:
		return "transmission_end"
	case ReasonSwitchedFrom:
		return "switched_from"
	default:
		return "unknown"
	}
}
