package model

type OptionResult struct {
	OptionID  int    `json:"option_id"`
	Text      string `json:"text"`
	VoteCount int    `json:"vote_count"`
}

// PollResultSet is a read-only snapshot of the tallies for one poll.
// Results keep the order returned by the service.
type PollResultSet struct {
	PollID   int            `json:"poll_id"`
	Question string         `json:"question"`
	Results  []OptionResult `json:"results"`
}

// TotalVotes sums the tallies. It is a display helper; the fetcher never aggregates.
func (r *PollResultSet) TotalVotes() int {
	total := 0
	for _, o := range r.Results {
		total += o.VoteCount
	}
	return total
}
