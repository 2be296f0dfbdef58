package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shaiso/ymlfeed/internal/domain"
)

// FeedFile — определение фида в YAML.
//
//	name: repair-services
//	params:
//	  catid: [3, 5]
//	  show_child_category_articles: true
//	  levels: 2
//	  city: Москва
type FeedFile struct {
	Name   string            `yaml:"name"`
	Params domain.FeedParams `yaml:"params"`
}

// LoadFeedFile читает и валидирует определение фида.
// Незаданные параметры берутся из domain.DefaultFeedParams.
func LoadFeedFile(path string) (*FeedFile, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read feed file: %w", err)
		}
		r = bytes.NewReader(data)
	}
	return parseFeedFile(r)
}

func parseFeedFile(r io.Reader) (*FeedFile, error) {
	ff := &FeedFile{Params: domain.DefaultFeedParams()}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(ff); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("feed file is empty")
		}
		return nil, fmt.Errorf("failed to parse feed file: %w", err)
	}

	if ff.Name == "" {
		return nil, fmt.Errorf("feed file: name is required")
	}
	if err := ff.Params.Validate(); err != nil {
		return nil, fmt.Errorf("feed file: %w", err)
	}
	return ff, nil
}

// NewFeedCmd создаёт группу команд для управления фидами.
func NewFeedCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Manage feeds",
	}

	cmd.AddCommand(
		newFeedListCmd(clientFn, outputFn),
		newFeedCreateCmd(clientFn, outputFn),
		newFeedShowCmd(clientFn, outputFn),
		newFeedUpdateCmd(clientFn, outputFn),
		newFeedDeleteCmd(clientFn, outputFn),
		newFeedPreviewCmd(clientFn, outputFn),
		newFeedRunCmd(clientFn, outputFn),
	)

	return cmd
}

var feedHeaders = []string{"ID", "NAME", "CATEGORIES", "COUNT", "CURRENCY", "UPDATED"}

func feedRow(f FeedResponse) []string {
	return []string{
		f.ID, f.Name, joinIDs(f.Params.CatIDs),
		strconv.Itoa(f.Params.Count), f.Params.Currency, f.UpdatedAt,
	}
}

func newFeedListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			feeds, err := client.ListFeeds()
			if err != nil {
				return err
			}

			rows := make([][]string, len(feeds))
			for i, f := range feeds {
				rows[i] = feedRow(f)
			}

			out.Print(feedHeaders, rows, feeds)
			return nil
		},
	}
}

func newFeedCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a feed from a YAML definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			ff, err := LoadFeedFile(file)
			if err != nil {
				return err
			}

			client := clientFn()
			out := outputFn()

			feed, err := client.CreateFeed(CreateFeedRequest{Name: ff.Name, Params: ff.Params})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Feed created: %s", feed.ID))
			out.Print(feedHeaders, [][]string{feedRow(*feed)}, feed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to feed YAML file, - for stdin (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newFeedShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show feed details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			feed, err := client.GetFeed(args[0])
			if err != nil {
				return err
			}

			p := feed.Params
			out.Print(
				[]string{"ID", "NAME", "CATEGORIES", "MODE", "CHILDREN", "LEVELS", "COUNT", "CITY"},
				[][]string{{
					feed.ID, feed.Name, joinIDs(p.CatIDs), categoryMode(p.CategoryFilteringType),
					strconv.FormatBool(p.ShowChildCategoryArticles), strconv.Itoa(p.Levels),
					strconv.Itoa(p.Count), p.City,
				}},
				feed,
			)
			return nil
		},
	}
}

func newFeedUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a feed from a YAML file; empty optional fields keep their stored values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ff, err := LoadFeedFile(file)
			if err != nil {
				return err
			}

			client := clientFn()
			out := outputFn()

			feed, err := client.UpdateFeed(args[0], UpdateFeedRequest{Name: &ff.Name, Params: &ff.Params})
			if err != nil {
				return err
			}

			out.Success("Feed updated")
			out.Print(feedHeaders, [][]string{feedRow(*feed)}, feed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to feed YAML file, - for stdin (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newFeedDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a feed with its schedules and runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteFeed(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Feed deleted: %s", args[0]))
			return nil
		},
	}
}

func newFeedPreviewCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "preview ID",
		Short: "Render the feed XML without writing it to storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			preview, err := client.PreviewFeed(args[0])
			if err != nil {
				return err
			}

			if output == "" {
				out.Raw(preview.Body)
				return nil
			}

			if err := os.WriteFile(output, preview.Body, 0o644); err != nil {
				return fmt.Errorf("failed to write preview: %w", err)
			}
			out.Success(fmt.Sprintf("Preview written to %s (%d offers)", output, preview.OffersCount))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write XML to file instead of stdout")

	return cmd
}

func newFeedRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "run ID",
		Short: "Start feed generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.CreateRun(args[0], CreateRunRequest{IdempotencyKey: key})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run started: %s", run.ID))
			out.Print(runHeaders, [][]string{runRow(*run)}, run)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "idempotency-key", "", "Reuse an existing run with the same key")

	return cmd
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func categoryMode(t int) string {
	if t == domain.CategoryFilterExclude {
		return "exclude"
	}
	return "include"
}
