package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"horse.fit/lingo/internal/language"
)

func runLanguages(args []string) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	options := language.Options()

	if outputFormat == outputFormatJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(options); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode languages: %v\n", err)
			return 1
		}
		return 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tLANGUAGE\tNATIVE")
	for _, option := range options {
		fmt.Fprintf(w, "%s\t%s\t%s\n", option.Code, option.Label, option.Native)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render languages: %v\n", err)
		return 1
	}
	return 0
}
