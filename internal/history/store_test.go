package history

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"horse.fit/lingo/internal/api"
	"horse.fit/lingo/internal/payloadschema"
)

type stubCreds struct {
	mu          sync.Mutex
	token       string
	err         error
	invalidated bool
}

func (c *stubCreds) Credential() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	return c.token, nil
}

func (c *stubCreds) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = true
}

type fakeHistoryAPI struct {
	mu          sync.Mutex
	entries     []payloadschema.HistoryRecord
	listErr     error
	deleteErr   error
	clearErr    error
	listCalls   int
	deleteCalls int
	clearCalls  int
}

func (f *fakeHistoryAPI) ListHistory(_ context.Context, _ string) ([]payloadschema.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]payloadschema.HistoryRecord, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeHistoryAPI) DeleteHistoryEntry(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, entry := range f.entries {
		if entry.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return api.ErrNotFound
}

func (f *fakeHistoryAPI) ClearHistory(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.entries = nil
	return nil
}

func seedEntries() []payloadschema.HistoryRecord {
	return []payloadschema.HistoryRecord{
		{ID: 3, SourceText: "hello", TranslatedText: "こんにちは", SourceLang: "en", TargetLang: "ja", CreatedAt: "2026-08-28T10:00:00"},
		{ID: 2, SourceText: "goodbye", TranslatedText: "au revoir", TargetLang: "fr", CreatedAt: "2026-08-27T10:00:00"},
		{ID: 1, SourceText: "thanks", TranslatedText: "gracias", SourceLang: "en", TargetLang: "es", CreatedAt: "2026-08-26T10:00:00"},
	}
}

func newTestStore(fake *fakeHistoryAPI, creds *stubCreds) *Store {
	return New(fake, creds, zerolog.Nop())
}

func TestFetchReplacesCollectionWholesale(t *testing.T) {
	t.Parallel()

	fake := &fakeHistoryAPI{entries: seedEntries()}
	store := newTestStore(fake, &stubCreds{token: "tok"})

	records, err := store.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if len(records) != 3 || records[0].ID != 3 {
		t.Fatalf("unexpected records: %+v", records)
	}

	fake.mu.Lock()
	fake.entries = fake.entries[:1]
	fake.mu.Unlock()

	if _, err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("unexpected second fetch error: %v", err)
	}
	if got := store.Entries(); len(got) != 1 {
		t.Fatalf("expected wholesale replacement, got %d entries", len(got))
	}
}

func TestFetchWithoutCredentialIssuesNoNetworkCall(t *testing.T) {
	t.Parallel()

	fake := &fakeHistoryAPI{entries: seedEntries()}
	store := newTestStore(fake, &stubCreds{err: api.ErrAuthRequired})

	if _, err := store.Fetch(context.Background()); !errors.Is(err, api.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if fake.listCalls != 0 {
		t.Fatalf("expected zero network calls, got %d", fake.listCalls)
	}
}

func TestFetchAuthRejectionInvalidatesSession(t *testing.T) {
	t.Parallel()

	fake := &fakeHistoryAPI{listErr: api.ErrAuthRequired}
	creds := &stubCreds{token: "stale"}
	store := newTestStore(fake, creds)

	if _, err := store.Fetch(context.Background()); !errors.Is(err, api.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	creds.mu.Lock()
	invalidated := creds.invalidated
	creds.mu.Unlock()
	if !invalidated {
		t.Fatalf("expected session invalidation after server-side auth rejection")
	}
}

func TestDeleteOneRefetchesBeforeReportingSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeHistoryAPI{entries: seedEntries()}
	store := newTestStore(fake, &stubCreds{token: "tok"})
	if _, err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	if err := store.DeleteOne(context.Background(), 2); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if fake.listCalls != 2 {
		t.Fatalf("expected a refetch after delete, got %d list calls", fake.listCalls)
	}
	if _, found := store.EntryByID(2); found {
		t.Fatalf("deleted entry still visible")
	}
	if got := len(store.Entries()); got != 2 {
		t.Fatalf("expected 2 entries after delete, got %d", got)
	}
}

func TestDeleteOneNotFoundLeavesCollectionUnchanged(t *testing.T) {
	t.Parallel()

	fake := &fakeHistoryAPI{entries: seedEntries()}
	store := newTestStore(fake, &stubCreds{token: "tok"})
	if _, err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	err := store.DeleteOne(context.Background(), 99)
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := len(store.Entries()); got != 3 {
		t.Fatalf("collection must be unchanged after failed delete, got %d entries", got)
	}
}

func TestDeleteOneRefreshFailureIsDistinctFromWriteFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeHistoryAPI{entries: seedEntries()}
	store := newTestStore(fake, &stubCreds{token: "tok"})
	if _, err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	fake.mu.Lock()
	fake.listErr = &api.StatusError{Status: 503, Detail: "down"}
	fake.mu.Unlock()

	err := store.DeleteOne(context.Background(), 1)
	if !errors.Is(err, ErrRefreshAfterWrite) {
		t.Fatalf("expected ErrRefreshAfterWrite, got %v", err)
	}
	// The write went through; only the reread failed. The previously
	// rendered collection stays in place.
	if got := len(store.Entries()); got != 3 {
		t.Fatalf("expected previous collection to remain visible, got %d entries", got)
	}
}

func TestClearAllRequiresConfirmation(t *testing.T) {
	t.Parallel()

	fake := &fakeHistoryAPI{entries: seedEntries()}
	store := newTestStore(fake, &stubCreds{token: "tok"})

	if err := store.ClearAll(context.Background(), func() bool { return false }); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled when confirmation is declined, got %v", err)
	}
	if err := store.ClearAll(context.Background(), nil); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled without a confirm gate, got %v", err)
	}
	if fake.clearCalls != 0 {
		t.Fatalf("declined confirmation must not dispatch, got %d clear calls", fake.clearCalls)
	}
}

func TestClearAllEmptiesCollectionAndIsIdempotent(t *testing.T) {
	t.Parallel()

	fake := &fakeHistoryAPI{entries: seedEntries()}
	store := newTestStore(fake, &stubCreds{token: "tok"})
	if _, err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	confirm := func() bool { return true }
	if err := store.ClearAll(context.Background(), confirm); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}
	if got := len(store.Entries()); got != 0 {
		t.Fatalf("expected empty collection after clear, got %d entries", got)
	}

	// Clearing an already-empty history succeeds.
	if err := store.ClearAll(context.Background(), confirm); err != nil {
		t.Fatalf("unexpected error on idempotent clear: %v", err)
	}
}

type recordingReplayer struct {
	restored []payloadschema.HistoryRecord
}

func (r *recordingReplayer) Restore(entry payloadschema.HistoryRecord) {
	r.restored = append(r.restored, entry)
}

func TestSelectEntryFeedsReplayerWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	fake := &fakeHistoryAPI{entries: seedEntries()}
	store := newTestStore(fake, &stubCreds{token: "tok"})
	if _, err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	entry, found := store.EntryByID(2)
	if !found {
		t.Fatalf("expected entry 2 to be cached")
	}

	replayer := &recordingReplayer{}
	store.SelectEntry(entry, replayer)

	if len(replayer.restored) != 1 || replayer.restored[0].TranslatedText != "au revoir" {
		t.Fatalf("unexpected replay: %+v", replayer.restored)
	}
	if fake.listCalls != 1 {
		t.Fatalf("select must not dispatch, got %d list calls", fake.listCalls)
	}
}

func TestSourceLanguageFor(t *testing.T) {
	t.Parallel()

	withCode := payloadschema.HistoryRecord{SourceText: "hello there", SourceLang: "en"}
	if got := SourceLanguageFor(withCode); got != "English" {
		t.Fatalf("expected explicit code to win, got %q", got)
	}

	unknownCode := payloadschema.HistoryRecord{SourceText: "hello", SourceLang: "xx-unknown"}
	if got := SourceLanguageFor(unknownCode); got != "xx-unknown" {
		t.Fatalf("unknown codes must come back raw, got %q", got)
	}

	// Too short to detect anything from.
	tiny := payloadschema.HistoryRecord{SourceText: "hi!"}
	if got := SourceLanguageFor(tiny); got != "unknown" {
		t.Fatalf("expected unknown for undetectable text, got %q", got)
	}
}
