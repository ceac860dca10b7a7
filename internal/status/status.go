package status

// Status is the lifecycle state of a dare. Exactly one holds at any
// time; every mutation goes through the transition table below.
type Status string

const (
	Soliciting            Status = "soliciting"
	WaitingForParticipant Status = "waiting_for_participant"
	InProgress            Status = "in_progress"
	Completed             Status = "completed"
	Forfeited             Status = "forfeited"
	Expired               Status = "expired"
	Rejected              Status = "rejected"
	Cancelled             Status = "cancelled"
	Graded                Status = "graded"
	Approved              Status = "approved"
	UserDeleted           Status = "user_deleted"
)

// Event is a lifecycle action applied to a dare or game.
type Event string

const (
	EventAccept      Event = "accept"
	EventReject      Event = "reject"
	EventJoin        Event = "join"
	EventSubmitProof Event = "submit_proof"
	EventChickenOut  Event = "chicken_out"
	EventExpire      Event = "expire"
	EventGrade       Event = "grade"
	EventApprove     Event = "approve"
	EventDelete      Event = "delete"
)

// transitions is the single authoritative transition table. An event
// absent for a state is illegal from that state, full stop.
var transitions = map[Status]map[Event]Status{
	Soliciting: {
		EventAccept: InProgress,
		EventExpire: Expired,
		EventDelete: Cancelled,
	},
	WaitingForParticipant: {
		EventAccept: InProgress,
		EventReject: Rejected,
		EventExpire: Expired,
		EventDelete: Cancelled,
	},
	InProgress: {
		EventSubmitProof: Completed,
		EventChickenOut:  Forfeited,
		EventExpire:      Expired,
		EventDelete:      Cancelled,
	},
	Completed: {
		EventGrade:   Graded,
		EventApprove: Approved,
	},
	Graded: {
		EventApprove: Approved,
	},
}

// Next returns the state reached by applying ev in from, and whether
// the transition is legal at all.
func Next(from Status, ev Event) (Status, bool) {
	to, ok := transitions[from][ev]
	return to, ok
}

// Terminal reports whether s admits no further performance. Completed
// is terminal for slot accounting even though grading may still follow.
func Terminal(s Status) bool {
	switch s {
	case Completed, Forfeited, Expired, Rejected, Cancelled, Graded, Approved, UserDeleted:
		return true
	}
	return false
}

// Open reports whether s holds one of the user's admission slots.
func Open(s Status) bool {
	return !Terminal(s)
}

// OpenStatuses lists the slot-holding states, for store queries.
func OpenStatuses() []Status {
	return []Status{Soliciting, WaitingForParticipant, InProgress}
}

// Valid reports whether s is a recognized dare status.
func Valid(s Status) bool {
	switch s {
	case Soliciting, WaitingForParticipant, InProgress, Completed, Forfeited,
		Expired, Rejected, Cancelled, Graded, Approved, UserDeleted:
		return true
	}
	return false
}
