package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// NewRunCmd создаёт группу команд для просмотра генераций.
func NewRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect feed generation runs",
	}

	cmd.AddCommand(
		newRunListCmd(clientFn, outputFn),
		newRunShowCmd(clientFn, outputFn),
		newRunWaitCmd(clientFn, outputFn),
		newRunCancelCmd(clientFn, outputFn),
	)

	return cmd
}

var runHeaders = []string{"ID", "FEED_ID", "STATUS", "TRIGGER", "OFFERS", "CREATED"}

func runRow(r RunResponse) []string {
	return []string{r.ID, r.FeedID, r.Status, r.Trigger, strconv.Itoa(r.OffersCount), r.CreatedAt}
}

var runDetailHeaders = []string{"ID", "FEED", "STATUS", "ATTEMPT", "OFFERS", "DURATION", "LOCATION", "ERROR"}

func runDetailRow(r RunResponse, feedName string) []string {
	feed := r.FeedID
	if feedName != "" {
		feed = feedName
	}
	return []string{
		r.ID, feed, r.Status, strconv.Itoa(r.Attempt), strconv.Itoa(r.OffersCount),
		formatDuration(r.DurationMs), orDash(r.Location), orDash(r.Error),
	}
}

// isTerminalStatus — run больше не изменится.
func isTerminalStatus(status string) bool {
	switch status {
	case "SUCCEEDED", "FAILED", "CANCELLED":
		return true
	}
	return false
}

func newRunListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var opts ListRunsOpts

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feed generation runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			runs, err := client.ListRuns(opts)
			if err != nil {
				return err
			}

			names := feedNames(client)
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = runRow(r)
				if name := names[r.FeedID]; name != "" {
					rows[i][1] = name
				}
			}

			out.Print(runHeaders, rows, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.FeedID, "feed-id", "", "Only runs of this feed")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (PENDING, RUNNING, SUCCEEDED, FAILED, CANCELLED)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newRunShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show run result: offers, file location, error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()

			run, err := client.GetRun(args[0])
			if err != nil {
				return err
			}

			var feedName string
			if feed, err := client.GetFeed(run.FeedID); err == nil {
				feedName = feed.Name
			}

			outputFn().Print(runDetailHeaders, [][]string{runDetailRow(*run, feedName)}, run)
			return nil
		},
	}
}

func newRunWaitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var interval, timeout time.Duration

	cmd := &cobra.Command{
		Use:   "wait ID",
		Short: "Wait until the feed is generated",
		Long: `Polls the run until it reaches a final status.
Exits with an error if the run failed, was cancelled or the timeout expired.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := waitRun(client, args[0], interval, timeout)
			if err != nil {
				return err
			}

			out.Print(runDetailHeaders, [][]string{runDetailRow(*run, "")}, run)
			if run.Status != "SUCCEEDED" {
				return fmt.Errorf("run %s finished with status %s", run.ID, run.Status)
			}
			out.Success(fmt.Sprintf("Feed written to %s (%d offers)", run.Location, run.OffersCount))
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Polling interval")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Give up after this long")

	return cmd
}

// waitRun опрашивает run до финального статуса.
func waitRun(client *Client, id string, interval, timeout time.Duration) (*RunResponse, error) {
	deadline := time.Now().Add(timeout)
	for {
		run, err := client.GetRun(id)
		if err != nil {
			return nil, err
		}
		if isTerminalStatus(run.Status) {
			return run, nil
		}
		if time.Now().Add(interval).After(deadline) {
			return nil, fmt.Errorf("run %s is still %s after %s", id, run.Status, timeout)
		}
		time.Sleep(interval)
	}
}

func newRunCancelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a pending run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := clientFn().CancelRun(args[0])
			if err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Run cancelled: %s", run.ID))
			return nil
		},
	}
}

func formatDuration(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return (time.Duration(ms) * time.Millisecond).String()
}
