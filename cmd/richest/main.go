// Command richest ranks the members of a Roblox group by the value of their
// limited items.
//
//	richest [flags] <group-url-or-id>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/app"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/config"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/export"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/logging"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/search"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
)

var errUsage = errors.New("usage")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, search.UserMessage(err))
		}
		os.Exit(1)
	}
}

type cliOptions struct {
	search.Options
	top     int
	asJSON  bool
	xlsx    string
	refresh bool
	quiet   bool
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (*cliOptions, string, error) {
	opts := &cliOptions{Options: cfg.SearchOptions()}

	fs := flag.NewFlagSet("richest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: richest [flags] <group-url-or-id>")
		fs.PrintDefaults()
	}

	fs.IntVar(&opts.ConcurrencyLimit, "concurrency", opts.ConcurrencyLimit, "inventory requests in flight")
	fs.Float64Var(&opts.Threshold, "threshold", opts.Threshold, "minimum item value (RAP) that counts")
	fs.BoolVar(&opts.UseCreatorFilter, "creator-filter", opts.UseCreatorFilter, "only count items created by Roblox")
	fs.BoolVar(&opts.IncludeZero, "include-zero", false, "list members without qualifying items")
	fs.BoolVar(&opts.Sliding, "sliding", false, "schedule requests in a sliding window instead of chunks")
	fs.BoolVar(&opts.FailFast, "fail-fast", false, "abort when an inventory cannot be read")
	fs.IntVar(&opts.top, "top", 0, "show only the first N rows (0 = all)")
	fs.BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	fs.StringVar(&opts.xlsx, "xlsx", "", "also write the leaderboard to this XLSX file")
	fs.BoolVar(&opts.refresh, "refresh", false, "ignore cached pages")
	fs.BoolVar(&opts.quiet, "quiet", false, "do not print progress")

	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, "", errUsage
	}
	return opts, fs.Arg(0), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging())

	opts, query, err := parseFlags(args, cfg, stderr)
	if err != nil {
		return err
	}

	groupID, err := roblox.ParseGroupID(query)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if !opts.quiet {
		opts.OnProgress = progressPrinter(stderr)
	}

	runSearch := a.Runner.Run
	if opts.refresh {
		runSearch = a.Runner.Refresh
	}
	result, err := runSearch(ctx, groupID, opts.Options)
	if err != nil {
		return err
	}

	if opts.xlsx != "" {
		if err := export.SaveXLSX(opts.xlsx, result, opts.top); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote %s\n", opts.xlsx)
	}

	if opts.asJSON {
		result.Leaderboard = result.Leaderboard.Top(opts.top)
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printTable(stdout, result, opts.top)
}

func progressPrinter(w io.Writer) func(search.Progress) {
	return func(p search.Progress) {
		if p.Total > 0 {
			fmt.Fprintf(w, "[%s] %s (%d/%d)\n", p.Stage, p.Message, p.Completed, p.Total)
			return
		}
		fmt.Fprintf(w, "[%s] %s\n", p.Stage, p.Message)
	}
}

func printTable(w io.Writer, result *search.Result, top int) error {
	rows := result.Leaderboard.Top(top)
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "No members of group %d hold qualifying items (%d members scanned).\n",
			result.GroupID, result.MemberCount)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tDISPLAY NAME\tTOTAL\tITEMS\tTOP ITEM\tPROFILE")
	for _, row := range rows {
		best := row.TopItemName
		if best != "" {
			best += " (" + formatValue(row.TopItemValue) + ")"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			row.Rank, row.Username, row.DisplayName, formatValue(row.TotalValue),
			row.QualifyingItemCount, best, roblox.ProfileURL(row.UserID))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d of %d members ranked", len(result.Leaderboard), result.MemberCount)
	if n := len(result.Failures); n > 0 {
		fmt.Fprintf(w, ", %d skipped", n)
	}
	if result.UnresolvedAssets > 0 {
		fmt.Fprintf(w, ", %d items with unknown creator", result.UnresolvedAssets)
	}
	_, err := fmt.Fprintf(w, " in %s.\n", result.Duration.Round(time.Millisecond))
	return err
}

// formatValue renders a Robux value with thousands separators.
func formatValue(v float64) string {
	digits := strconv.FormatInt(int64(v+0.5), 10)
	if len(digits) <= 3 {
		return digits
	}
	out := make([]byte, 0, len(digits)+len(digits)/3)
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, digits[:lead]...)
	for i := lead; i < len(digits); i += 3 {
		out = append(out, ',')
		out = append(out, digits[i:i+3]...)
	}
	return string(out)
}
