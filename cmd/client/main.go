package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"

	"github.com/Guizzs26/polls_client/internal/model"
)

func subscribeURL(relayURL, pollID string) string {
	return fmt.Sprintf("%s/ws/results/%s", strings.TrimRight(relayURL, "/"), url.PathEscape(pollID))
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Correct usage: go run ./cmd/client <poll-id>")
	}
	pollID := os.Args[1]

	relayURL := os.Getenv("RELAY_URL")
	if relayURL == "" {
		relayURL = "ws://localhost:8081"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, resp, err := websocket.Dial(ctx, subscribeURL(relayURL, pollID), nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("Failed to subscribe to poll '%s': %s", pollID, resp.Status)
		}
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "client exit")

	log.Printf("Listening for results of poll '%s'...", pollID)
	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Println("Connection closed")
				return
			}
			log.Printf("Read error: %v", err)
			return
		}

		var rs model.PollResultSet
		if err := json.Unmarshal(msg, &rs); err != nil {
			log.Printf("Unreadable update: %s", msg)
			continue
		}
		log.Print(formatResults(&rs))
	}
}

func formatResults(rs *model.PollResultSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d votes)", rs.Question, rs.TotalVotes())
	for _, o := range rs.Results {
		fmt.Fprintf(&b, "\n -> %s: %d", o.Text, o.VoteCount)
	}
	return b.String()
}
