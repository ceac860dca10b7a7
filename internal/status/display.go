package status

// Display mappings, one exhaustive table per concern. Call sites must
// consume these instead of switching on the raw status string.

var statusLabels = map[Status]string{
	Soliciting:            "Soliciting",
	WaitingForParticipant: "Waiting for participant",
	InProgress:            "In progress",
	Completed:             "Completed",
	Forfeited:             "Chickened out",
	Expired:               "Expired",
	Rejected:              "Rejected",
	Cancelled:             "Cancelled",
	Graded:                "Graded",
	Approved:              "Approved",
	UserDeleted:           "Deleted",
}

var statusColors = map[Status]string{
	Soliciting:            "blue",
	WaitingForParticipant: "blue",
	InProgress:            "amber",
	Completed:             "green",
	Forfeited:             "red",
	Expired:               "grey",
	Rejected:              "red",
	Cancelled:             "grey",
	Graded:                "green",
	Approved:              "green",
	UserDeleted:           "grey",
}

var difficultyLabels = map[Difficulty]string{
	Titillating: "Titillating",
	Arousing:    "Arousing",
	Explicit:    "Explicit",
	Edgy:        "Edgy",
	Hardcore:    "Hardcore",
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "grey"
}

func (d Difficulty) Label() string {
	if l, ok := difficultyLabels[d]; ok {
		return l
	}
	return string(d)
}
