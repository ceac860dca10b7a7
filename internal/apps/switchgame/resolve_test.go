package switchgame

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedDraw(v int) func(int) int {
	return func(int) int { return v }
}

func TestResolveNonTies(t *testing.T) {
	cases := []struct {
		creator      Move
		participant  Move
		creatorLoses bool
	}{
		{MoveRock, MoveScissors, false},
		{MoveRock, MovePaper, true},
		{MovePaper, MoveRock, false},
		{MovePaper, MoveScissors, true},
		{MoveScissors, MovePaper, false},
		{MoveScissors, MoveRock, true},
	}

	for _, tc := range cases {
		res := Resolve(tc.creator, tc.participant, fixedDraw(0))
		assert.False(t, res.BothWin, "%s vs %s", tc.creator, tc.participant)
		assert.False(t, res.BothLose, "%s vs %s", tc.creator, tc.participant)
		assert.False(t, res.RandomDraw, "%s vs %s", tc.creator, tc.participant)
		assert.Equal(t, tc.creatorLoses, res.CreatorLoses, "%s vs %s", tc.creator, tc.participant)
	}
}

func TestResolveNonTiesAreSymmetric(t *testing.T) {
	moves := []Move{MoveRock, MovePaper, MoveScissors}
	for _, a := range moves {
		for _, b := range moves {
			if a == b {
				continue
			}
			forward := Resolve(a, b, fixedDraw(0))
			backward := Resolve(b, a, fixedDraw(0))
			assert.NotEqual(t, forward.CreatorLoses, backward.CreatorLoses,
				"%s vs %s must lose the same side regardless of seat", a, b)
		}
	}
}

func TestResolveRockTieBothLose(t *testing.T) {
	res := Resolve(MoveRock, MoveRock, fixedDraw(0))
	assert.True(t, res.BothLose)
	assert.False(t, res.BothWin)
	assert.False(t, res.RandomDraw)
}

func TestResolvePaperTieBothWin(t *testing.T) {
	res := Resolve(MovePaper, MovePaper, fixedDraw(0))
	assert.True(t, res.BothWin)
	assert.False(t, res.BothLose)
	assert.False(t, res.RandomDraw)
}

func TestResolveScissorsTieUsesDraw(t *testing.T) {
	res := Resolve(MoveScissors, MoveScissors, fixedDraw(0))
	require.True(t, res.RandomDraw)
	assert.True(t, res.CreatorLoses)
	assert.False(t, res.BothWin)
	assert.False(t, res.BothLose)

	res = Resolve(MoveScissors, MoveScissors, fixedDraw(1))
	require.True(t, res.RandomDraw)
	assert.False(t, res.CreatorLoses)
}

func TestResolveScissorsTieDrawIsCalledOnce(t *testing.T) {
	calls := 0
	Resolve(MoveScissors, MoveScissors, func(n int) int {
		calls++
		assert.Equal(t, 2, n)
		return 0
	})
	assert.Equal(t, 1, calls)
}

func TestResolveScissorsTieRoughlyUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const trials = 10000

	creatorLosses := 0
	for i := 0; i < trials; i++ {
		if Resolve(MoveScissors, MoveScissors, rng.Intn).CreatorLoses {
			creatorLosses++
		}
	}

	ratio := float64(creatorLosses) / trials
	assert.Less(t, math.Abs(ratio-0.5), 0.02, "creator lost %.3f of scissors ties", ratio)
}

func TestMoveValid(t *testing.T) {
	assert.True(t, MoveRock.Valid())
	assert.True(t, MovePaper.Valid())
	assert.True(t, MoveScissors.Valid())
	assert.False(t, Move("lizard").Valid())
	assert.False(t, Move("").Valid())
}
