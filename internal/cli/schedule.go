package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// NewScheduleCmd создаёт группу команд для расписаний генерации фидов.
func NewScheduleCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage feed generation schedules",
	}

	cmd.AddCommand(
		newScheduleListCmd(clientFn, outputFn),
		newScheduleCreateCmd(clientFn, outputFn),
		newScheduleShowCmd(clientFn, outputFn),
		newScheduleUpdateCmd(clientFn, outputFn),
		newScheduleDeleteCmd(clientFn, outputFn),
		newScheduleToggleCmd(clientFn, outputFn, true),
		newScheduleToggleCmd(clientFn, outputFn, false),
	)

	return cmd
}

var scheduleHeaders = []string{"ID", "FEED", "NAME", "TRIGGER", "TZ", "ENABLED", "NEXT_DUE"}

// scheduleRow — строка таблицы; feedName пустой, если имя фида неизвестно.
func scheduleRow(s ScheduleResponse, feedName string) []string {
	feed := s.FeedID
	if feedName != "" {
		feed = feedName
	}
	return []string{
		s.ID, feed, s.Name, formatTrigger(s), s.Timezone,
		strconv.FormatBool(s.Enabled), s.NextDueAt,
	}
}

// ScheduleDetails — расписание вместе с фидом и последней генерацией.
type ScheduleDetails struct {
	ScheduleResponse
	FeedName string       `json:"feed_name,omitempty"`
	LastRun  *RunResponse `json:"last_run,omitempty"`
}

func newScheduleListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var feedID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules with their feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			schedules, err := client.ListSchedules(feedID)
			if err != nil {
				return err
			}

			names := feedNames(client)
			rows := make([][]string, len(schedules))
			for i, s := range schedules {
				rows[i] = scheduleRow(s, names[s.FeedID])
			}

			out.Print(scheduleHeaders, rows, schedules)
			return nil
		},
	}

	cmd.Flags().StringVar(&feedID, "feed-id", "", "Only schedules of this feed")

	return cmd
}

func newScheduleCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var (
		name     string
		cronExpr string
		interval time.Duration
		timezone string
		disabled bool
	)

	cmd := &cobra.Command{
		Use:   "create FEED_ID",
		Short: "Schedule regular generation of a feed",
		Example: `  ymlfeed schedule create 7f0c... --name nightly --cron "0 3 * * *" --timezone Europe/Moscow
  ymlfeed schedule create 7f0c... --name often --interval 6h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			intervalSec, err := intervalSeconds(interval)
			if err != nil {
				return err
			}
			if (cronExpr == "") == (intervalSec == 0) {
				return errors.New("exactly one of --cron or --interval is required")
			}

			schedule, err := client.CreateSchedule(args[0], CreateScheduleRequest{
				Name:        name,
				CronExpr:    cronExpr,
				IntervalSec: intervalSec,
				Timezone:    timezone,
				Enabled:     !disabled,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule created: %s (next run %s)", schedule.ID, orDash(schedule.NextDueAt)))
			out.Print(scheduleHeaders, [][]string{scheduleRow(*schedule, "")}, schedule)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Schedule name (required)")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression or descriptor (e.g. '0 3 * * *', '@daily')")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Fixed interval between generations (e.g. 6h)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "Timezone of the cron expression (e.g. 'Europe/Moscow')")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the schedule disabled")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newScheduleShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a schedule, its feed and the last generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			schedule, err := client.GetSchedule(args[0])
			if err != nil {
				return err
			}

			details := ScheduleDetails{ScheduleResponse: *schedule}
			// Фид и run могли удалить, расписание показываем всё равно
			if feed, err := client.GetFeed(schedule.FeedID); err == nil {
				details.FeedName = feed.Name
			}
			if schedule.LastRunID != "" {
				if run, err := client.GetRun(schedule.LastRunID); err == nil {
					details.LastRun = run
				}
			}

			row := scheduleRow(*schedule, details.FeedName)
			lastStatus, lastOffers, lastLocation := "-", "-", "-"
			if details.LastRun != nil {
				lastStatus = details.LastRun.Status
				lastOffers = strconv.Itoa(details.LastRun.OffersCount)
				lastLocation = orDash(details.LastRun.Location)
			}

			out.Print(
				append(append([]string{}, scheduleHeaders...), "LAST_RUN", "OFFERS", "LOCATION"),
				[][]string{append(row, lastStatus, lastOffers, lastLocation)},
				details,
			)
			return nil
		},
	}
}

func newScheduleUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var (
		name     string
		cronExpr string
		interval time.Duration
		timezone string
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a schedule's name, trigger or timezone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateScheduleRequest{}
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("cron") {
				req.CronExpr = &cronExpr
			}
			if flags.Changed("interval") {
				sec, err := intervalSeconds(interval)
				if err != nil {
					return err
				}
				req.IntervalSec = &sec
			}
			if flags.Changed("timezone") {
				req.Timezone = &timezone
			}

			schedule, err := client.UpdateSchedule(args[0], req)
			if err != nil {
				return err
			}

			out.Success("Schedule updated")
			out.Print(scheduleHeaders, [][]string{scheduleRow(*schedule, "")}, schedule)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New schedule name")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "New cron expression")
	cmd.Flags().DurationVar(&interval, "interval", 0, "New interval (e.g. 12h)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "New timezone")

	return cmd
}

func newScheduleDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a schedule (runs and the feed are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteSchedule(args[0]); err != nil {
				return err
			}
			outputFn().Success(fmt.Sprintf("Schedule deleted: %s", args[0]))
			return nil
		},
	}
}

// newScheduleToggleCmd — команды enable и disable.
func newScheduleToggleCmd(clientFn func() *Client, outputFn func() *Output, enabled bool) *cobra.Command {
	use, short, done := "disable ID", "Stop generating the feed on schedule", "disabled"
	if enabled {
		use, short, done = "enable ID", "Resume generating the feed on schedule", "enabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := clientFn().SetScheduleEnabled(args[0], enabled)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Schedule %s: %s", done, args[0])
			if enabled && schedule.NextDueAt != "" {
				msg += ", next run " + schedule.NextDueAt
			}
			outputFn().Success(msg)
			return nil
		},
	}
}

// feedNames возвращает имена фидов по ID. Ошибка не критична:
// таблица покажет ID вместо имён.
func feedNames(client *Client) map[string]string {
	feeds, err := client.ListFeeds()
	if err != nil {
		return nil
	}
	names := make(map[string]string, len(feeds))
	for _, f := range feeds {
		names[f.ID] = f.Name
	}
	return names
}

// intervalSeconds переводит --interval в секунды API.
func intervalSeconds(d time.Duration) (int, error) {
	if d == 0 {
		return 0, nil
	}
	if d < time.Second || d%time.Second != 0 {
		return 0, fmt.Errorf("interval %s must be a positive whole number of seconds", d)
	}
	return int(d / time.Second), nil
}

// formatTrigger — cron-выражение или интервал в виде "every 6h0m0s".
func formatTrigger(s ScheduleResponse) string {
	if s.CronExpr != "" {
		return s.CronExpr
	}
	if s.IntervalSec > 0 {
		return "every " + (time.Duration(s.IntervalSec) * time.Second).String()
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
