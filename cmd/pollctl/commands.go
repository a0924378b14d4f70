package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/Guizzs26/polls_client/internal/event"
	"github.com/Guizzs26/polls_client/internal/ledger"
	"github.com/Guizzs26/polls_client/internal/model"
	"github.com/Guizzs26/polls_client/internal/pollapi"
)

const usage = `Usage:
  pollctl vote [-token TOKEN] <poll-id> <option-id>
  pollctl results <poll-id>
  pollctl polls [-skip N] [-limit N] [-all] [-batch N]
  pollctl register <username> <password>
  pollctl history [poll-id]
`

var errUsage = errors.New("invalid usage")

type app struct {
	client    *pollapi.Client
	token     string
	ledger    *ledger.VoteLedger  // nil: LEDGER_PATH not set
	publisher event.VotePublisher // nil: VOTE_BROKER not set
	logger    *slog.Logger
	out       io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "vote":
		return a.vote(ctx, args[1:])
	case "results":
		return a.results(ctx, args[1:])
	case "polls":
		return a.polls(ctx, args[1:])
	case "register":
		return a.register(ctx, args[1:])
	case "history":
		return a.history(args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) vote(ctx context.Context, args []string) error {
	fs := newFlagSet("vote")
	token := fs.String("token", a.token, "bearer token (default $POLLS_TOKEN)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: vote needs <poll-id> <option-id>", errUsage)
	}
	pollID, optionID := fs.Arg(0), fs.Arg(1)

	vote, err := a.client.SubmitVote(ctx, pollID, optionID, *token)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Vote %d recorded for option %d on poll %s at %s\n", vote.ID, vote.OptionID, pollID, vote.CreatedAt)

	// The vote is already counted; follow-up failures are only reported.
	if a.ledger != nil {
		if _, err := a.ledger.Record(pollID, *vote); err != nil {
			a.logger.Warn("failed to record vote in ledger", "poll_id", pollID, "error", err)
		}
	}
	if a.publisher != nil {
		cast := model.VoteCast{PollID: pollID, Vote: *vote, SubmittedAt: time.Now().UTC()}
		if err := a.publisher.Publish(ctx, cast); err != nil {
			a.logger.Warn("failed to publish vote event", "poll_id", pollID, "error", err)
		}
	}
	return nil
}

func (a *app) results(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: results needs <poll-id>", errUsage)
	}

	rs, err := a.client.FetchResults(ctx, args[0])
	if err != nil {
		return err
	}
	printResults(a.out, rs)
	return nil
}

func printResults(out io.Writer, rs *model.PollResultSet) {
	total := rs.TotalVotes()
	fmt.Fprintf(out, "Poll %d: %s\n", rs.PollID, rs.Question)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, o := range rs.Results {
		share := 0.0
		if total > 0 {
			share = float64(o.VoteCount) * 100 / float64(total)
		}
		fmt.Fprintf(tw, "  [%d]\t%s\t%d\t(%.1f%%)\n", o.OptionID, o.Text, o.VoteCount, share)
	}
	tw.Flush()
	fmt.Fprintf(out, "Total votes: %d\n", total)
}

func (a *app) polls(ctx context.Context, args []string) error {
	fs := newFlagSet("polls")
	skip := fs.Int("skip", 0, "polls to skip")
	limit := fs.Int("limit", pollapi.DefaultBatchSize, "polls per page")
	all := fs.Bool("all", false, "fetch every page")
	batch := fs.Int("batch", pollapi.DefaultBatchSize, "page size with -all")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var (
		polls []model.Poll
		err   error
	)
	if *all {
		polls, err = a.client.FetchAllPolls(ctx, *batch)
	} else {
		polls, err = a.client.ListPolls(ctx, *skip, *limit)
	}
	if err != nil {
		return err
	}

	for _, p := range polls {
		fmt.Fprintf(a.out, "- ID: %d, Question: %s\n", p.ID, p.Question)
	}
	fmt.Fprintf(a.out, "Fetched %d polls\n", len(polls))
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: register needs <username> <password>", errUsage)
	}

	user, err := a.client.RegisterUser(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %q registered with id %d\n", user.Username, user.ID)
	return nil
}

func (a *app) history(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: history takes at most one <poll-id>", errUsage)
	}
	if a.ledger == nil {
		return errors.New("history needs LEDGER_PATH to be set")
	}

	pollID := ""
	if len(args) == 1 {
		pollID = args[0]
	}
	entries, err := a.ledger.List(pollID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POLL\tVOTE\tOPTION\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", e.PollID, e.Vote.ID, e.Vote.OptionID, e.Vote.CreatedAt)
	}
	return tw.Flush()
}
