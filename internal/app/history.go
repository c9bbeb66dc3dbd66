package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"horse.fit/lingo/internal/cli"
	"horse.fit/lingo/internal/history"
	"horse.fit/lingo/internal/reader"
	"horse.fit/lingo/internal/translate"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"

	historyCellWidth = 40
)

func runHistory(args []string) int {
	if len(args) == 0 {
		printHistoryUsage()
		return 2
	}

	target := strings.ToLower(strings.TrimSpace(args[0]))
	switch target {
	case "list", "replay", "delete", "clear":
	default:
		fmt.Fprintf(os.Stderr, "Unknown history action: %s\n\n", args[0])
		printHistoryUsage()
		return 2
	}

	fs := flag.NewFlagSet("history "+target, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	force := fs.Bool("force", false, "Skip confirmation prompt")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	env, err := newClientEnv(*timeout, envLoader)
	if err != nil {
		return reportError(err)
	}
	defer env.close()

	store := history.New(env.client, env.session, env.logger)

	switch target {
	case "list":
		return runHistoryList(env, store, *format)
	case "replay":
		return runHistoryReplay(env, store, fs.Args())
	case "delete":
		return runHistoryDelete(env, store, fs.Args())
	case "clear":
		return runHistoryClear(env, store, *force)
	}
	return 2
}

func runHistoryList(env *clientEnv, store *history.Store, format string) int {
	outputFormat, err := parseOutputFormat(format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	entries, err := store.Fetch(env.ctx)
	if err != nil {
		return reportError(err)
	}

	if outputFormat == outputFormatJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(entries); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode history: %v\n", err)
			return 1
		}
		return 0
	}

	if len(entries) == 0 {
		fmt.Println("No translations yet")
		return 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tFROM\tTO\tSOURCE\tTRANSLATED")
	for _, entry := range entries {
		source, _ := reader.TruncateText(flattenCell(entry.SourceText), historyCellWidth)
		translated, _ := reader.TruncateText(flattenCell(entry.TranslatedText), historyCellWidth)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			entry.ID,
			history.FormatRelativeTime(entry.CreatedAt),
			history.SourceLanguageFor(entry),
			history.DescribeLanguage(entry.TargetLang),
			source,
			translated,
		)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render history: %v\n", err)
		return 1
	}
	return 0
}

func runHistoryReplay(env *clientEnv, store *history.Store, args []string) int {
	id, ok := parseEntryID(args)
	if !ok {
		printHistoryUsage()
		return 2
	}

	if _, err := store.Fetch(env.ctx); err != nil {
		return reportError(err)
	}

	entry, found := store.EntryByID(id)
	if !found {
		fmt.Fprintf(os.Stderr, "No history entry with id %d\n", id)
		return 1
	}

	// Replaying repopulates the orchestrator from the stored record; no
	// translate call is dispatched.
	orchestrator := translate.New(env.client, env.session, env.logger)
	store.SelectEntry(entry, orchestrator)

	snapshot := orchestrator.Snapshot()
	fmt.Printf("Source (%s):\n%s\n\n", history.SourceLanguageFor(entry), snapshot.PendingText)
	fmt.Printf("Translation (%s):\n%s\n", history.DescribeLanguage(entry.TargetLang), snapshot.LastResult.TranslatedText)
	return 0
}

func runHistoryDelete(env *clientEnv, store *history.Store, args []string) int {
	id, ok := parseEntryID(args)
	if !ok {
		printHistoryUsage()
		return 2
	}

	if err := store.DeleteOne(env.ctx, id); err != nil {
		if errors.Is(err, history.ErrRefreshAfterWrite) {
			fmt.Fprintf(os.Stderr, "Entry %d was deleted but the history view could not be refreshed: %v\n", id, err)
			return 1
		}
		return reportError(err)
	}

	fmt.Printf("Deleted entry %d (%d remaining)\n", id, len(store.Entries()))
	return 0
}

func runHistoryClear(env *clientEnv, store *history.Store, force bool) int {
	confirm := func() bool {
		if force {
			return true
		}
		ok, err := confirmDangerousAction("Delete ALL translation history? This cannot be undone.")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read confirmation: %v\n", err)
			return false
		}
		return ok
	}

	if err := store.ClearAll(env.ctx, confirm); err != nil {
		if errors.Is(err, history.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Cancelled")
			return 1
		}
		return reportError(err)
	}

	fmt.Println("History cleared")
	return 0
}

// flattenCell collapses whitespace so multi-line text cannot break the table.
func flattenCell(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func parseEntryID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseOutputFormat(raw string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	switch format {
	case "", outputFormatTable:
		return outputFormatTable, nil
	case outputFormatJSON:
		return outputFormatJSON, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func printHistoryUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lingo history list [--format table|json] [--env .env] [--timeout 30s]")
	fmt.Fprintln(os.Stderr, "  lingo history replay <id>")
	fmt.Fprintln(os.Stderr, "  lingo history delete <id>")
	fmt.Fprintln(os.Stderr, "  lingo history clear [--force]")
}
