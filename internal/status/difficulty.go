package status

// Difficulty is the ordered intensity scale of a dare. The order is
// used for matching and sorting, never for access control.
type Difficulty string

const (
	Titillating Difficulty = "titillating"
	Arousing    Difficulty = "arousing"
	Explicit    Difficulty = "explicit"
	Edgy        Difficulty = "edgy"
	Hardcore    Difficulty = "hardcore"
)

var difficultyRank = map[Difficulty]int{
	Titillating: 1,
	Arousing:    2,
	Explicit:    3,
	Edgy:        4,
	Hardcore:    5,
}

// Rank returns the ordinal position of d, or 0 for unknown values.
func (d Difficulty) Rank() int {
	return difficultyRank[d]
}

func (d Difficulty) Valid() bool {
	return difficultyRank[d] != 0
}

// DareType distinguishes who performs and who demands.
type DareType string

const (
	TypeSubmission DareType = "submission"
	TypeDomination DareType = "domination"
	TypeSwitch     DareType = "switch"
)

func (t DareType) Valid() bool {
	switch t {
	case TypeSubmission, TypeDomination, TypeSwitch:
		return true
	}
	return false
}
