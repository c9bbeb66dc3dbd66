package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/lingo/internal/cli"
	"horse.fit/lingo/internal/langdetect"
	"horse.fit/lingo/internal/language"
	"horse.fit/lingo/internal/reader"
	"horse.fit/lingo/internal/translate"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	lang := fs.String("lang", "", "Target language code (for example: en, ja, zh-cn)")
	pageURL := fs.String("url", "", "Translate the readable text of a web page instead of argument text")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	targetLang := language.NormalizeTag(*lang)
	if targetLang == "" {
		fmt.Fprintln(os.Stderr, "--lang is required (see \"lingo languages\")")
		return 2
	}

	page := strings.TrimSpace(*pageURL)
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if page == "" && text == "" {
		printTranslateUsage()
		return 2
	}
	if page != "" && text != "" {
		fmt.Fprintln(os.Stderr, "translate takes either text arguments or --url, not both")
		return 2
	}

	env, err := newClientEnv(*timeout, envLoader)
	if err != nil {
		return reportError(err)
	}
	defer env.close()

	if page != "" {
		extracted, err := reader.FetchReadableText(env.ctx, page, reader.FetchOptions{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to extract page text: %v\n", err)
			return 1
		}
		text = extracted
	}

	orchestrator := translate.New(env.client, env.session, env.logger)
	result, err := orchestrator.Translate(env.ctx, text, targetLang)
	if err != nil {
		return reportError(err)
	}

	if detected := langdetect.DetectISO6391(result.SourceText); detected != "" {
		fmt.Fprintf(os.Stderr, "Detected source language: %s\n", language.Describe(detected))
	}
	fmt.Println(result.TranslatedText)
	return 0
}

func printTranslateUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lingo translate --lang <code> <text...>")
	fmt.Fprintln(os.Stderr, "  lingo translate --lang <code> --url <page>")
}
