package main

import (
	"testing"

	"github.com/Guizzs26/polls_client/internal/model"
)

func TestFormatResults(t *testing.T) {
	got := formatResults(&model.PollResultSet{
		Question: "Best language?",
		Results: []model.OptionResult{
			{OptionID: 2, Text: "Python", VoteCount: 1},
			{OptionID: 1, Text: "Go", VoteCount: 3},
		},
	})

	want := "Best language? (4 votes)\n -> Python: 1\n -> Go: 3"
	if got != want {
		t.Errorf("formatResults = %q, want %q", got, want)
	}
}

func TestSubscribeURL(t *testing.T) {
	tests := []struct {
		relay, pollID, want string
	}{
		{"ws://localhost:8081", "42", "ws://localhost:8081/ws/results/42"},
		{"ws://relay/", "42", "ws://relay/ws/results/42"},
		{"ws://relay", "a/b?c", "ws://relay/ws/results/a%2Fb%3Fc"},
	}
	for _, tt := range tests {
		if got := subscribeURL(tt.relay, tt.pollID); got != tt.want {
			t.Errorf("subscribeURL(%q, %q) = %q, want %q", tt.relay, tt.pollID, got, tt.want)
		}
	}
}
