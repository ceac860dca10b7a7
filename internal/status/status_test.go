package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextLegalTransitions(t *testing.T) {
	cases := []struct {
		from Status
		ev   Event
		want Status
	}{
		{Soliciting, EventAccept, InProgress},
		{Soliciting, EventExpire, Expired},
		{Soliciting, EventDelete, Cancelled},
		{WaitingForParticipant, EventAccept, InProgress},
		{WaitingForParticipant, EventReject, Rejected},
		{WaitingForParticipant, EventExpire, Expired},
		{WaitingForParticipant, EventDelete, Cancelled},
		{InProgress, EventSubmitProof, Completed},
		{InProgress, EventChickenOut, Forfeited},
		{InProgress, EventExpire, Expired},
		{InProgress, EventDelete, Cancelled},
		{Completed, EventGrade, Graded},
		{Completed, EventApprove, Approved},
		{Graded, EventApprove, Approved},
	}

	for _, tc := range cases {
		got, ok := Next(tc.from, tc.ev)
		require.True(t, ok, "%s + %s should be legal", tc.from, tc.ev)
		assert.Equal(t, tc.want, got)
	}
}

func TestNextIllegalTransitions(t *testing.T) {
	cases := []struct {
		from Status
		ev   Event
	}{
		{Soliciting, EventSubmitProof},
		{Soliciting, EventReject},
		{WaitingForParticipant, EventSubmitProof},
		{InProgress, EventAccept},
		{Completed, EventSubmitProof},
		{Completed, EventDelete},
		{Graded, EventGrade},
		{Graded, EventDelete},
		{Approved, EventApprove},
		{Approved, EventDelete},
		{Forfeited, EventAccept},
		{Expired, EventAccept},
		{Rejected, EventAccept},
		{Cancelled, EventAccept},
		{UserDeleted, EventAccept},
	}

	for _, tc := range cases {
		_, ok := Next(tc.from, tc.ev)
		assert.False(t, ok, "%s + %s should be illegal", tc.from, tc.ev)
	}
}

func TestTerminalAndOpenPartition(t *testing.T) {
	open := []Status{Soliciting, WaitingForParticipant, InProgress}
	terminal := []Status{Completed, Forfeited, Expired, Rejected, Cancelled, Graded, Approved, UserDeleted}

	for _, s := range open {
		assert.True(t, Open(s), "%s should be open", s)
		assert.False(t, Terminal(s))
	}
	for _, s := range terminal {
		assert.True(t, Terminal(s), "%s should be terminal", s)
		assert.False(t, Open(s))
	}

	assert.ElementsMatch(t, open, OpenStatuses())
}

func TestTerminalStatesAdmitNoEvents(t *testing.T) {
	events := []Event{EventAccept, EventReject, EventJoin, EventSubmitProof,
		EventChickenOut, EventExpire, EventGrade, EventApprove, EventDelete}

	// Completed and Graded still admit grading events; everything else
	// terminal is a dead end.
	for _, s := range []Status{Forfeited, Expired, Rejected, Cancelled, Approved, UserDeleted} {
		for _, ev := range events {
			_, ok := Next(s, ev)
			assert.False(t, ok, "%s + %s", s, ev)
		}
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Soliciting))
	assert.True(t, Valid(UserDeleted))
	assert.False(t, Valid(Status("pending")))
	assert.False(t, Valid(Status("")))
}

func TestGameTransitions(t *testing.T) {
	got, ok := GameNext(GameWaitingForParticipant, EventJoin)
	require.True(t, ok)
	assert.Equal(t, GameInProgress, got)

	got, ok = GameNext(GameInProgress, EventSubmitProof)
	require.True(t, ok)
	assert.Equal(t, GameCompleted, got)

	got, ok = GameNext(GameInProgress, EventChickenOut)
	require.True(t, ok)
	assert.Equal(t, GameForfeited, got)

	_, ok = GameNext(GameCompleted, EventJoin)
	assert.False(t, ok)
	_, ok = GameNext(GameForfeited, EventSubmitProof)
	assert.False(t, ok)

	assert.True(t, GameTerminal(GameCompleted))
	assert.True(t, GameTerminal(GameForfeited))
	assert.False(t, GameTerminal(GameWaitingForParticipant))
	assert.False(t, GameTerminal(GameInProgress))
}

func TestDifficultyRankOrdering(t *testing.T) {
	ordered := []Difficulty{Titillating, Arousing, Explicit, Edgy, Hardcore}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ordered[i-1].Rank(), ordered[i].Rank())
	}
	assert.True(t, Hardcore.Valid())
	assert.False(t, Difficulty("extreme").Valid())
}
