package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "login":
		return runLogin(args[1:])
	case "logout":
		return runLogout(args[1:])
	case "register":
		return runRegister(args[1:])
	case "whoami":
		return runWhoami(args[1:])
	case "translate":
		return runTranslate(args[1:])
	case "history":
		return runHistory(args[1:])
	case "languages":
		return runLanguages(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "lingo CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lingo <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  login      Log in and persist the session token")
	fmt.Fprintln(os.Stderr, "  logout     Clear the persisted session token")
	fmt.Fprintln(os.Stderr, "  register   Create a new account")
	fmt.Fprintln(os.Stderr, "  whoami     Show the current session identity")
	fmt.Fprintln(os.Stderr, "  translate  Translate text or a web page")
	fmt.Fprintln(os.Stderr, "  history    List, replay, delete or clear past translations")
	fmt.Fprintln(os.Stderr, "  languages  List supported target languages")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"lingo <command> -h\" for command-specific flags.")
}
