package model

import "time"

// VoteRecord is the vote created by the poll service.
type VoteRecord struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	OptionID  int    `json:"option_id"`
	CreatedAt string `json:"created_at"`
}

// VoteRequest is the body sent to POST /polls/{pollId}/vote.
type VoteRequest struct {
	OptionID int `json:"option_id"`
}

// VoteCast is emitted on the event bus after the service accepted a vote.
type VoteCast struct {
	PollID      string     `json:"poll_id"`
	Vote        VoteRecord `json:"vote"`
	SubmittedAt time.Time  `json:"submitted_at"`
}
