package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/foxseedlab/kaigolog/internal/activity"
	"github.com/foxseedlab/kaigolog/internal/clock"
	"github.com/foxseedlab/kaigolog/internal/config"
	"github.com/foxseedlab/kaigolog/internal/export"
	"github.com/foxseedlab/kaigolog/internal/report"
	"github.com/foxseedlab/kaigolog/internal/tracker"
	"github.com/samber/do/v2"
)

const usage = `usage: kaigolog <command> [arguments]

commands:
  start <name>                 start an activity, closing any running one
  stop                         stop the running activity
  status                       show the running activity and today's log
  watch                        live status; Ctrl-C stops and persists
  rename <id> <name>           rename an interval
  delete <id>                  soft-delete a closed interval
  recover <id>                 undo a soft delete
  resident add <id> <name>     attach a resident (use "current" for the open interval)
  resident remove <id> <name>  detach a resident
  roster [add|remove <name>]   list or edit known resident names
  log                          closed intervals of previous days
  summary [flags]              bucketed totals (-granularity, -activities, -residents)
  export [-format csv|json]    write the flattened history to a file
  clear -yes                   wipe all persisted data
`

func dispatch(ctx context.Context, injector do.Injector, cfg *config.Config, t *tracker.Tracker, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return nil
	}

	clk := do.MustInvoke[clock.Clock](injector)

	switch args[0] {
	case "start":
		return cmdStart(ctx, t, args[1:])
	case "stop":
		return t.Stop(ctx)
	case "status":
		printStatus(t, clk.Now(), cfg.Location())
		return nil
	case "watch":
		return cmdWatch(ctx, t, clk, cfg.Location())
	case "rename":
		if len(args) < 3 {
			return fmt.Errorf("usage: kaigolog rename <id> <name>")
		}
		return t.Rename(ctx, resolveID(t, args[1]), strings.Join(args[2:], " "))
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: kaigolog delete <id>")
		}
		return t.SetDeleted(ctx, args[1], true)
	case "recover":
		if len(args) < 2 {
			return fmt.Errorf("usage: kaigolog recover <id>")
		}
		return t.SetDeleted(ctx, args[1], false)
	case "resident":
		return cmdResident(ctx, t, args[1:])
	case "roster":
		return cmdRoster(ctx, t, args[1:])
	case "log":
		printLog(t, clk.Now(), cfg.Location())
		return nil
	case "summary":
		return cmdSummary(t, clk.Now(), cfg.Location(), args[1:])
	case "export":
		return cmdExport(ctx, injector, t, clk.Now(), cfg.Location(), args[1:])
	case "clear":
		return cmdClear(ctx, t, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func cmdStart(ctx context.Context, t *tracker.Tracker, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("usage: kaigolog start <name>")
	}
	return t.Start(ctx, name)
}

func cmdResident(ctx context.Context, t *tracker.Tracker, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: kaigolog resident add|remove <id> <name>")
	}
	id := resolveID(t, args[1])
	name := strings.Join(args[2:], " ")
	switch args[0] {
	case "add":
		return t.AddResident(ctx, id, name)
	case "remove":
		return t.RemoveResident(ctx, id, name)
	}
	return fmt.Errorf("usage: kaigolog resident add|remove <id> <name>")
}

// resolveID lets the shell address the open interval as "current".
func resolveID(t *tracker.Tracker, id string) string {
	if id != "current" {
		return id
	}
	_, current := t.Snapshot()
	if current == nil {
		return id
	}
	return current.ID
}

func cmdRoster(ctx context.Context, t *tracker.Tracker, args []string) error {
	if len(args) == 0 {
		for _, name := range t.Roster() {
			fmt.Println(name)
		}
		return nil
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: kaigolog roster [add|remove <name>]")
	}
	name := strings.Join(args[1:], " ")
	switch args[0] {
	case "add":
		return t.AddRosterName(ctx, name)
	case "remove":
		return t.RemoveRosterName(ctx, name)
	}
	return fmt.Errorf("usage: kaigolog roster [add|remove <name>]")
}

func cmdWatch(ctx context.Context, t *tracker.Tracker, clk clock.Clock, loc *time.Location) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := clk.NewTicker(time.Second)
	defer ticker.Stop()

	printStatus(t, clk.Now(), loc)
	for {
		select {
		case <-ticker.C():
			printWatchLine(t, clk.Now())
		case <-sigCh:
			// Same close semantics as stop(): the open interval is closed
			// and persisted before the process goes away.
			fmt.Println()
			return t.Stop(ctx)
		}
	}
}

func printWatchLine(t *tracker.Tracker, now time.Time) {
	_, current := t.Snapshot()
	if current == nil {
		fmt.Printf("\ridle%-40s", "")
		return
	}
	fmt.Printf("\r%s  %s%-20s", current.Name, activity.FormatDuration(current.Duration(now)), "")
}

func printStatus(t *tracker.Tracker, now time.Time, loc *time.Location) {
	history, current := t.Snapshot()

	if current != nil {
		fmt.Printf("Now: %s [%s]\n", current.Name, shortID(current.ID))
		fmt.Printf("  Start At: %s\n", current.StartAt.In(loc).Format("15:04:05"))
		fmt.Printf("  Duration: %s\n", activity.FormatDuration(current.Duration(now)))
		for _, r := range current.Residents {
			fmt.Printf("  Resident: %s (joined %s)\n", r.Name, r.JoinedAt.In(loc).Format("15:04:05"))
		}
	} else {
		fmt.Println("No activity running.")
	}

	todayKey := report.BucketKey(now.In(loc), report.GranularityDay)
	printed := false
	for _, iv := range history {
		if iv.EndAt == nil || report.BucketKey(iv.EndAt.In(loc), report.GranularityDay) != todayKey {
			continue
		}
		if !printed {
			fmt.Println("\nToday:")
			printed = true
		}
		printInterval(iv, loc)
	}
}

func printLog(t *tracker.Tracker, now time.Time, loc *time.Location) {
	history, _ := t.Snapshot()
	for _, group := range report.GroupByDay(history, now, loc) {
		fmt.Println(report.FormatBucketKey(group.Date, report.GranularityDay))
		for _, iv := range group.Intervals {
			printInterval(iv, loc)
		}
	}
}

func printInterval(iv activity.Interval, loc *time.Location) {
	mark := " "
	if iv.Deleted {
		mark = "x"
	}
	end := "-"
	var d time.Duration
	if iv.EndAt != nil {
		end = iv.EndAt.In(loc).Format("15:04:05")
		d = iv.EndAt.Sub(iv.StartAt)
	}
	fmt.Printf("  [%s] %s %s  %s - %s  %s\n",
		shortID(iv.ID), mark, iv.Name,
		iv.StartAt.In(loc).Format("15:04:05"), end,
		activity.FormatDuration(d))
	for _, r := range iv.Residents {
		fmt.Printf("        resident %s (joined %s)\n", r.Name, r.JoinedAt.In(loc).Format("15:04:05"))
	}
}

func cmdSummary(t *tracker.Tracker, now time.Time, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	granularityFlag := fs.String("granularity", "day", "bucket size: day, week, month or year")
	activitiesFlag := fs.String("activities", "", "comma-separated activity allow-list")
	residentsFlag := fs.String("residents", "", "comma-separated resident allow-list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := report.ParseGranularity(*granularityFlag)
	if err != nil {
		return err
	}

	history, current := t.Snapshot()
	buckets := report.Summarize(history, current, now, g, loc)
	buckets = report.Apply(buckets, report.Filter{
		Activities: splitList(*activitiesFlag),
		Residents:  splitList(*residentsFlag),
	})

	if len(buckets) == 0 {
		fmt.Println("No activity data.")
		return nil
	}
	for _, bucket := range buckets {
		fmt.Println(report.FormatBucketKey(bucket.Key, g))
		maxDuration := bucket.Activities[0].Duration
		for _, entry := range bucket.Activities {
			if entry.Duration > maxDuration {
				maxDuration = entry.Duration
			}
		}
		for _, entry := range bucket.Activities {
			fmt.Printf("  %-24s %s  %s\n", entry.Name,
				activity.FormatDuration(entry.Duration), bar(entry.Duration, maxDuration))
			names := make([]string, 0, len(entry.ResidentDurations))
			for name := range entry.ResidentDurations {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("    %-22s %s\n", name, activity.FormatDuration(entry.ResidentDurations[name]))
			}
		}
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func bar(d, max time.Duration) string {
	const width = 30
	if max <= 0 {
		return ""
	}
	n := int(int64(d) * width / int64(max))
	if n < 1 {
		n = 1
	}
	return strings.Repeat("#", n)
}

func cmdExport(ctx context.Context, injector do.Injector, t *tracker.Tracker, now time.Time, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	formatFlag := fs.String("format", "csv", "output format: csv or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	exporter := do.MustInvoke[export.Exporter](injector)
	history, current := t.Snapshot()
	rows := export.Flatten(history, current, now, loc)

	path, err := exporter.Export(ctx, *formatFlag, rows)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Println("exported to", path)
	return nil
}

func cmdClear(ctx context.Context, t *tracker.Tracker, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "confirm wiping all persisted data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("clear wipes all activity data; re-run with -yes to confirm")
	}
	return t.Clear(ctx)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
