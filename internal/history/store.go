package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"horse.fit/lingo/internal/api"
	"horse.fit/lingo/internal/langdetect"
	"horse.fit/lingo/internal/language"
	"horse.fit/lingo/internal/payloadschema"
)

var (
	// ErrCancelled reports a destructive action the user declined to confirm.
	// Nothing was dispatched.
	ErrCancelled = errors.New("cancelled")
	// ErrRefreshAfterWrite reports a reread failure after a successful write.
	// The write itself may have gone through; callers must not treat this as
	// "write failed".
	ErrRefreshAfterWrite = errors.New("history refresh after successful write failed")
)

// HistoryAPI is the slice of the backend client the store needs.
type HistoryAPI interface {
	ListHistory(ctx context.Context, token string) ([]payloadschema.HistoryRecord, error)
	DeleteHistoryEntry(ctx context.Context, token string, id int64) error
	ClearHistory(ctx context.Context, token string) error
}

// CredentialSource supplies the bearer token at call time.
type CredentialSource interface {
	Credential() (string, error)
	Invalidate()
}

// Replayer receives a past translation to repopulate pending input and last
// result without a new translate call. The orchestrator implements it.
type Replayer interface {
	Restore(entry payloadschema.HistoryRecord)
}

// Store holds the server's translation history for display. The collection is
// replaced wholesale on every fetch; there is no incremental merge and no
// background polling.
type Store struct {
	mu     sync.Mutex
	api    HistoryAPI
	creds  CredentialSource
	logger zerolog.Logger

	fetchGeneration uint64
	entries         []payloadschema.HistoryRecord
}

// New builds a history store on top of the backend client and session.
func New(client HistoryAPI, creds CredentialSource, logger zerolog.Logger) *Store {
	return &Store{
		api:    client,
		creds:  creds,
		logger: logger,
	}
}

// Fetch retrieves the ordered history and replaces the held collection. A
// fetch superseded by a newer one leaves the newer result in place.
func (s *Store) Fetch(ctx context.Context) ([]payloadschema.HistoryRecord, error) {
	token, err := s.creds.Credential()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fetchGeneration++
	generation := s.fetchGeneration
	s.mu.Unlock()

	records, err := s.api.ListHistory(ctx, token)
	if err != nil {
		if errors.Is(err, api.ErrAuthRequired) {
			s.creds.Invalidate()
		}
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	s.mu.Lock()
	if generation == s.fetchGeneration {
		s.entries = records
	}
	s.mu.Unlock()

	return records, nil
}

// Entries returns a copy of the held collection.
func (s *Store) Entries() []payloadschema.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]payloadschema.HistoryRecord, len(s.entries))
	copy(out, s.entries)
	return out
}

// DeleteOne removes one entry by id and refetches before reporting success,
// so a caller that re-renders never sees a stale view. A refetch failure
// after a successful delete surfaces as ErrRefreshAfterWrite.
func (s *Store) DeleteOne(ctx context.Context, id int64) error {
	token, err := s.creds.Credential()
	if err != nil {
		return err
	}

	if err := s.api.DeleteHistoryEntry(ctx, token, id); err != nil {
		if errors.Is(err, api.ErrAuthRequired) {
			s.creds.Invalidate()
		}
		return fmt.Errorf("delete history entry %d: %w", id, err)
	}

	if _, err := s.Fetch(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshAfterWrite, err)
	}

	s.logger.Info().Int64("id", id).Msg("history entry deleted")
	return nil
}

// ClearAll removes every entry after the confirm gate passes. Clearing an
// already-empty history succeeds.
func (s *Store) ClearAll(ctx context.Context, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return ErrCancelled
	}

	token, err := s.creds.Credential()
	if err != nil {
		return err
	}

	if err := s.api.ClearHistory(ctx, token); err != nil {
		if errors.Is(err, api.ErrAuthRequired) {
			s.creds.Invalidate()
		}
		return fmt.Errorf("clear history: %w", err)
	}

	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	s.logger.Info().Msg("history cleared")
	return nil
}

// SelectEntry feeds a past translation into the replayer. Pure data
// transform; no network call is dispatched.
func (s *Store) SelectEntry(entry payloadschema.HistoryRecord, replayer Replayer) {
	if replayer == nil {
		return
	}
	replayer.Restore(entry)
}

// EntryByID looks an entry up in the held collection.
func (s *Store) EntryByID(id int64) (payloadschema.HistoryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return payloadschema.HistoryRecord{}, false
}

// DescribeLanguage resolves a code to its display name, falling back to the
// raw code for anything unknown.
func DescribeLanguage(code string) string {
	return language.Describe(code)
}

// SourceLanguageFor reports a display value for an entry's source language,
// detecting one from the source text when the server omitted it.
func SourceLanguageFor(entry payloadschema.HistoryRecord) string {
	if code := strings.TrimSpace(entry.SourceLang); code != "" {
		return DescribeLanguage(code)
	}
	if detected := langdetect.DetectISO6391(entry.SourceText); detected != "" {
		return DescribeLanguage(detected) + " (detected)"
	}
	return "unknown"
}
