package switchgame

// Move is a concealed rock-paper-scissors commitment.
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

func (m Move) Valid() bool {
	switch m {
	case MoveRock, MovePaper, MoveScissors:
		return true
	}
	return false
}

// Resolution is the outcome of one game, expressed relative to the
// creator. Exactly one of the three shapes holds: both win, both lose,
// or exactly one side loses.
type Resolution struct {
	BothWin      bool `json:"both_win"`
	BothLose     bool `json:"both_lose"`
	CreatorLoses bool `json:"creator_loses"`
	// RandomDraw marks a scissors tie, where the loser was picked by a
	// uniform draw rather than by the moves.
	RandomDraw bool `json:"random_draw"`
}

// Resolve decides a game from the two revealed moves. Ties do not
// re-roll; each tied move has its own deliberate outcome:
// rock/rock both parties lose, paper/paper both win, scissors/scissors
// picks the loser with one uniform draw. draw(n) must return a uniform
// value in [0, n).
func Resolve(creator, participant Move, draw func(n int) int) Resolution {
	if creator == participant {
		switch creator {
		case MoveRock:
			return Resolution{BothLose: true}
		case MovePaper:
			return Resolution{BothWin: true}
		default:
			return Resolution{CreatorLoses: draw(2) == 0, RandomDraw: true}
		}
	}
	return Resolution{CreatorLoses: beats(participant, creator)}
}

// beats reports whether a defeats b under the standard cycle.
func beats(a, b Move) bool {
	switch a {
	case MoveRock:
		return b == MoveScissors
	case MoveScissors:
		return b == MovePaper
	case MovePaper:
		return b == MoveRock
	}
	return false
}
