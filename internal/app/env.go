package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/lingo/internal/api"
	"horse.fit/lingo/internal/cli"
	"horse.fit/lingo/internal/config"
	"horse.fit/lingo/internal/logging"
	"horse.fit/lingo/internal/session"
)

// clientEnv bundles everything a command needs to talk to the backend.
type clientEnv struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     *config.Config
	logger  zerolog.Logger
	client  *api.Client
	session *session.Session
}

func newClientEnv(timeout time.Duration, envLoader *cli.EnvLoader) (*clientEnv, error) {
	if envLoader != nil {
		envLoader.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	client := api.NewClient(cfg.APIBaseURL, api.Options{
		Timeout: cfg.HTTPTimeout,
		Logger:  logger,
	})

	store, err := session.NewTokenStore(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("resolve token store: %w", err)
	}

	sess, err := session.New(client, store, logger)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = cfg.HTTPTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	return &clientEnv{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		logger:  logger,
		client:  client,
		session: sess,
	}, nil
}

func (e *clientEnv) close() {
	if e != nil && e.cancel != nil {
		e.cancel()
	}
}

// reportError prints a command failure and maps it to an exit code. Auth
// failures get a hint toward login since the session may have been
// invalidated underneath the user.
func reportError(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, api.ErrAuthRequired) {
		fmt.Fprintln(os.Stderr, "Run \"lingo login <username>\" to authenticate.")
	}
	return 1
}

func confirmDangerousAction(prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", strings.TrimSpace(prompt))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func promptSecret(prompt string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
