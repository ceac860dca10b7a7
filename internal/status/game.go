package status

// GameStatus is the lifecycle state of a switch game. The space is
// game-scoped and smaller than the dare space: a game waits for its
// one participant, carries the losing side's obligation while it is
// outstanding, and ends completed or forfeited.
type GameStatus string

const (
	GameWaitingForParticipant GameStatus = "waiting_for_participant"
	GameInProgress            GameStatus = "in_progress"
	GameCompleted             GameStatus = "completed"
	GameForfeited             GameStatus = "forfeited"
)

var gameTransitions = map[GameStatus]map[Event]GameStatus{
	GameWaitingForParticipant: {
		EventJoin:   GameInProgress,
		EventExpire: GameForfeited,
		EventDelete: GameForfeited,
	},
	GameInProgress: {
		EventSubmitProof: GameCompleted,
		EventChickenOut:  GameForfeited,
	},
}

// GameNext returns the state reached by applying ev in from.
func GameNext(from GameStatus, ev Event) (GameStatus, bool) {
	to, ok := gameTransitions[from][ev]
	return to, ok
}

// GameTerminal reports whether s admits no further play.
func GameTerminal(s GameStatus) bool {
	return s == GameCompleted || s == GameForfeited
}
