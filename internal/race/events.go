package race

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent is sent when a lobby is successfully created.
type LobbyCreatedEvent struct {
	Code string
}

func (LobbyCreatedEvent) sessionEvent() {}

// LobbyErrorEvent is sent when a lobby operation fails.
type LobbyErrorEvent struct {
	Message string
}

func (LobbyErrorEvent) sessionEvent() {}

// LobbyJoinedEvent is sent to both host and joiner when someone joins.
type LobbyJoinedEvent struct {
	Code       string
	Side       RacerID // Which side this session races (Racer1 or Racer2)
	OpponentID SessionID
}

func (LobbyJoinedEvent) sessionEvent() {}

// LobbyPlayerLeftEvent is sent when a racer leaves the lobby before the
// race starts.
type LobbyPlayerLeftEvent struct {
	Code string
}

func (LobbyPlayerLeftEvent) sessionEvent() {}

// RaceStartedEvent is sent when the race begins. Both sessions receive
// the same Seed and run their dungeon from it, so the stages, enemies,
// and items match on both sides.
type RaceStartedEvent struct {
	MatchID MatchID
	Side    RacerID
	Seed    int64
	Code    string // Keep code for display
}

func (RaceStartedEvent) sessionEvent() {}

// OpponentProgressEvent relays the other racer's latest standing.
type OpponentProgressEvent struct {
	MatchID MatchID
	Report  ProgressReport
}

func (OpponentProgressEvent) sessionEvent() {}

// RaceEndedEvent is sent when the race ends.
type RaceEndedEvent struct {
	MatchID MatchID
	Reason  RaceEndReason
	Winner  RacerID // 0 if nobody won (draw or cancelled)
	Report1 ProgressReport
	Report2 ProgressReport
}

func (RaceEndedEvent) sessionEvent() {}

// RaceEndReason describes why a race ended.
type RaceEndReason int

const (
	RaceEndReasonEscape     RaceEndReason = iota // A racer reached the gate first
	RaceEndReasonBothFell                        // Both racers died; score decides
	RaceEndReasonTimeLimit                       // Time ran out; score decides
	RaceEndReasonForfeit                         // Opponent disconnected mid-race
	RaceEndReasonCancelled                       // Race was cancelled
	RaceEndReasonHostLeft                        // Host left the lobby
	RaceEndReasonJoinerLeft                      // Joiner left the lobby
)

func (r RaceEndReason) String() string {
	switch r {
	case RaceEndReasonEscape:
		return "First escape"
	case RaceEndReasonBothFell:
		return "Both fell"
	case RaceEndReasonTimeLimit:
		return "Time limit"
	case RaceEndReasonForfeit:
		return "Opponent disconnected"
	case RaceEndReasonCancelled:
		return "Race cancelled"
	case RaceEndReasonHostLeft:
		return "Host left"
	case RaceEndReasonJoinerLeft:
		return "Opponent left"
	default:
		return "Unknown"
	}
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateLobbyMsg requests creation of a new lobby.
type CreateLobbyMsg struct {
	SessionID SessionID
}

func (CreateLobbyMsg) coordinatorMessage() {}

// JoinLobbyMsg requests joining an existing lobby.
type JoinLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (JoinLobbyMsg) coordinatorMessage() {}

// CancelLobbyMsg requests cancellation of a hosted lobby.
type CancelLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (CancelLobbyMsg) coordinatorMessage() {}

// LeaveLobbyMsg requests leaving a joined lobby.
type LeaveLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (LeaveLobbyMsg) coordinatorMessage() {}

// LeaveRaceMsg requests leaving an active race. Leaving forfeits.
type LeaveRaceMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

func (LeaveRaceMsg) coordinatorMessage() {}

// ProgressMsg reports a racer's standing to their race.
type ProgressMsg struct {
	MatchID MatchID
	Racer   RacerID
	Report  ProgressReport
}

func (ProgressMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
