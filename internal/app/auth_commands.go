package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/lingo/internal/cli"
)

func runLogin(args []string) int {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	password := fs.String("password", "", "Password (prompted when omitted)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  lingo login <username> [--password secret] [--env .env] [--timeout 30s]")
		return 2
	}

	username := strings.TrimSpace(fs.Arg(0))
	secret := strings.TrimSpace(*password)
	if secret == "" {
		entered, err := promptSecret("Password")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
			return 1
		}
		secret = entered
	}

	env, err := newClientEnv(*timeout, envLoader)
	if err != nil {
		return reportError(err)
	}
	defer env.close()

	if err := env.session.Login(env.ctx, username, secret); err != nil {
		return reportError(err)
	}

	fmt.Printf("Logged in as %s\n", strings.ToLower(username))
	return 0
}

func runLogout(args []string) int {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	env, err := newClientEnv(0, envLoader)
	if err != nil {
		return reportError(err)
	}
	defer env.close()

	if err := env.session.Logout(); err != nil {
		return reportError(err)
	}

	fmt.Println("Logged out")
	return 0
}

func runRegister(args []string) int {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	email := fs.String("email", "", "Email address for the new account")
	password := fs.String("password", "", "Password (prompted when omitted)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  lingo register <username> --email you@example.com [--password secret]")
		return 2
	}

	username := strings.TrimSpace(fs.Arg(0))
	secret := strings.TrimSpace(*password)
	if secret == "" {
		entered, err := promptSecret("Password")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
			return 1
		}
		secret = entered
	}

	env, err := newClientEnv(*timeout, envLoader)
	if err != nil {
		return reportError(err)
	}
	defer env.close()

	user, err := env.session.Register(env.ctx, username, secret, *email)
	if err != nil {
		return reportError(err)
	}

	fmt.Printf("Registered %s; run \"lingo login %s\" to start a session\n", user.Username, user.Username)
	return 0
}

func runWhoami(args []string) int {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	env, err := newClientEnv(0, envLoader)
	if err != nil {
		return reportError(err)
	}
	defer env.close()

	identity, err := env.session.Identity()
	if err != nil {
		return reportError(err)
	}

	fmt.Printf("Logged in as %s\n", identity.Username)
	if !identity.ExpiresAt.IsZero() {
		fmt.Printf("Session expires at %s\n", identity.ExpiresAt.Local().Format(time.RFC1123))
	}
	return 0
}
