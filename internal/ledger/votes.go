package ledger

import (
	"fmt"
	"time"

	"github.com/Guizzs26/polls_client/internal/model"
)

// Entry is a vote this client submitted, as confirmed by the service.
type Entry struct {
	ID         int64
	PollID     string
	Vote       model.VoteRecord
	RecordedAt time.Time
}

type VoteLedger struct {
	db *DB
}

func NewVoteLedger(db *DB) *VoteLedger {
	return &VoteLedger{db: db}
}

func (l *VoteLedger) Record(pollID string, v model.VoteRecord) (*Entry, error) {
	now := time.Now().UTC()
	result, err := l.db.db.Exec(`
		INSERT INTO submitted_votes (poll_id, vote_id, user_id, option_id, created_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, pollID, v.ID, v.UserID, v.OptionID, v.CreatedAt, now)
	if err != nil {
		return nil, fmt.Errorf("insert vote: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return &Entry{ID: id, PollID: pollID, Vote: v, RecordedAt: now}, nil
}

// List returns recorded votes, oldest first. An empty pollID lists every poll.
func (l *VoteLedger) List(pollID string) ([]*Entry, error) {
	rows, err := l.db.db.Query(`
		SELECT id, poll_id, vote_id, user_id, option_id, created_at, recorded_at
		FROM submitted_votes
		WHERE ? = '' OR poll_id = ?
		ORDER BY id
	`, pollID, pollID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.PollID, &e.Vote.ID, &e.Vote.UserID, &e.Vote.OptionID, &e.Vote.CreatedAt, &e.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
