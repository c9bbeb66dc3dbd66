package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"horse.fit/lingo/internal/api"
	"horse.fit/lingo/internal/language"
	"horse.fit/lingo/internal/payloadschema"
)

// TranslateAPI is the slice of the backend client the orchestrator needs.
type TranslateAPI interface {
	Translate(ctx context.Context, token, text, targetLang string) (api.TranslateResponse, error)
}

// CredentialSource supplies the bearer token at call time. The orchestrator
// never caches a token across calls.
type CredentialSource interface {
	Credential() (string, error)
	Invalidate()
}

// Result is the outcome of one accepted translation.
type Result struct {
	SourceText     string
	TargetLang     string
	TranslatedText string
}

// Snapshot is the orchestrator's visible state at one instant.
type Snapshot struct {
	Loading     bool
	PendingText string
	PendingLang string
	LastResult  *Result
	LastError   string
}

// Orchestrator validates and dispatches translate requests. Overlapping calls
// are ordered by a generation counter: the last call started wins, and
// responses from superseded calls never touch visible state.
type Orchestrator struct {
	mu     sync.Mutex
	api    TranslateAPI
	creds  CredentialSource
	logger zerolog.Logger

	generation  uint64
	inFlight    int
	pendingText string
	pendingLang string
	lastResult  *Result
	lastError   string
}

// New builds an orchestrator on top of the backend client and session.
func New(client TranslateAPI, creds CredentialSource, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		api:    client,
		creds:  creds,
		logger: logger,
	}
}

// Translate dispatches one translation request. Validation failures and a
// missing credential fail before any network call. The returned result is
// this call's own outcome; visible state reflects only the newest dispatched
// call (see Snapshot).
func (o *Orchestrator) Translate(ctx context.Context, sourceText, targetLang string) (*Result, error) {
	text := strings.TrimSpace(sourceText)
	if text == "" {
		return nil, api.NewValidationError("text", "is required")
	}

	lang := language.NormalizeTag(targetLang)
	if lang == "" {
		return nil, api.NewValidationError("target_lang", "is required")
	}
	if !language.IsSupported(lang) {
		return nil, api.NewValidationError("target_lang", fmt.Sprintf("%q is not a supported target language", targetLang))
	}

	token, err := o.creds.Credential()
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.generation++
	generation := o.generation
	o.inFlight++
	o.pendingText = text
	o.pendingLang = lang
	o.mu.Unlock()

	resp, err := o.api.Translate(ctx, token, text, lang)

	if err != nil && errors.Is(err, api.ErrAuthRequired) {
		o.creds.Invalidate()
	}

	o.mu.Lock()
	o.inFlight--
	accepted := generation == o.generation
	if accepted {
		if err != nil {
			// Keep the previous result visible; a failed retry must not
			// blank a translation the user is still looking at.
			o.lastError = err.Error()
		} else {
			o.lastResult = &Result{
				SourceText:     text,
				TargetLang:     lang,
				TranslatedText: resp.TranslatedText,
			}
			o.lastError = ""
		}
	}
	o.mu.Unlock()

	if !accepted {
		o.logger.Debug().
			Uint64("generation", generation).
			Msg("discarded superseded translate response")
	}

	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}
	return &Result{
		SourceText:     text,
		TargetLang:     lang,
		TranslatedText: resp.TranslatedText,
	}, nil
}

// Restore repopulates the pending input and last result from a history entry
// without dispatching a network call.
func (o *Orchestrator) Restore(entry payloadschema.HistoryRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pendingText = entry.SourceText
	o.pendingLang = entry.TargetLang
	o.lastResult = &Result{
		SourceText:     entry.SourceText,
		TargetLang:     entry.TargetLang,
		TranslatedText: entry.TranslatedText,
	}
	o.lastError = ""
}

// Snapshot returns the visible state. LastResult and LastError may be stale
// but visible while a newer request is still loading.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot := Snapshot{
		Loading:     o.inFlight > 0,
		PendingText: o.pendingText,
		PendingLang: o.pendingLang,
		LastError:   o.lastError,
	}
	if o.lastResult != nil {
		resultCopy := *o.lastResult
		snapshot.LastResult = &resultCopy
	}
	return snapshot
}
