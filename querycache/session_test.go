package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/pkg/testsupport"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

// account is the record type used throughout the session tests
type account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// mockExecutor tracks executions per query text to verify caching behavior
type mockExecutor struct {
	mu      sync.Mutex
	calls   map[string]int
	results map[string][]account
	err     error
	delay   time.Duration
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		calls:   make(map[string]int),
		results: make(map[string][]account),
	}
}

func (m *mockExecutor) Execute(ctx context.Context, query string) ([]account, error) {
	m.mu.Lock()
	m.calls[query]++
	result := m.results[query]
	err := m.err
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *mockExecutor) callCount(query string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[query]
}

func newTestSession(t *testing.T, exec Executor[account], opts ...Option[account]) *Session[account] {
	t.Helper()

	store, err := cache.NewStore(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return New(exec, store, opts...)
}

func TestSession_FetchObjects_ExecutesOncePerQuery(t *testing.T) {
	const query = "SELECT id, name FROM accounts"

	exec := newMockExecutor()
	exec.results[query] = []account{
		{ID: "1", Name: "Acme"},
		{ID: "2", Name: "Globex"},
	}

	session := newTestSession(t, exec)
	ctx := context.Background()

	want := map[string]account{
		"1": {ID: "1", Name: "Acme"},
		"2": {ID: "2", Name: "Globex"},
	}

	for i := 0; i < 3; i++ {
		got, err := session.FetchObjects(ctx, query)
		if err != nil {
			t.Fatalf("FetchObjects failed on call %d: %v", i+1, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("unexpected result on call %d (-want +got):\n%s", i+1, diff)
		}
	}

	if exec.callCount(query) != 1 {
		t.Errorf("expected exactly one execution, got %d", exec.callCount(query))
	}
}

func TestSession_ListRecords_PreservesOrderAndDuplicates(t *testing.T) {
	const query = "SELECT id, name FROM accounts ORDER BY name"

	exec := newMockExecutor()
	exec.results[query] = []account{
		{ID: "2", Name: "Globex"},
		{ID: "1", Name: "Acme"},
		{ID: "2", Name: "Globex"},
	}

	session := newTestSession(t, exec)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := session.ListRecords(ctx, query)
		if err != nil {
			t.Fatalf("ListRecords failed on call %d: %v", i+1, err)
		}
		if diff := cmp.Diff(exec.results[query], got); diff != "" {
			t.Fatalf("order or duplicates not preserved on call %d (-want +got):\n%s", i+1, diff)
		}
	}

	if exec.callCount(query) != 1 {
		t.Errorf("expected exactly one execution, got %d", exec.callCount(query))
	}
}

func TestSession_DuplicateIdentifiers_LastRowWins(t *testing.T) {
	const query = "SELECT id, name FROM accounts"

	exec := newMockExecutor()
	exec.results[query] = []account{
		{ID: "1", Name: "stale"},
		{ID: "1", Name: "fresh"},
	}

	session := newTestSession(t, exec)

	got, err := session.FetchObjects(context.Background(), query)
	if err != nil {
		t.Fatalf("FetchObjects failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected duplicate identifiers to collapse, got %d entries", len(got))
	}
	if got["1"].Name != "fresh" {
		t.Errorf("expected last row to win, got %q", got["1"].Name)
	}
}

func TestSession_StoresAreIndependent(t *testing.T) {
	const query = "SELECT id, name FROM accounts"

	exec := newMockExecutor()
	exec.results[query] = []account{{ID: "1", Name: "Acme"}}

	session := newTestSession(t, exec)
	ctx := context.Background()

	if _, err := session.FetchObjects(ctx, query); err != nil {
		t.Fatalf("FetchObjects failed: %v", err)
	}
	if exec.callCount(query) != 1 {
		t.Fatalf("expected one execution after FetchObjects, got %d", exec.callCount(query))
	}

	// The list store must be cold for the same query text
	if _, err := session.ListRecords(ctx, query); err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if exec.callCount(query) != 2 {
		t.Errorf("expected list store to execute independently, got %d executions", exec.callCount(query))
	}

	// Both stores warm now: no further executions
	if _, err := session.FetchObjects(ctx, query); err != nil {
		t.Fatalf("FetchObjects failed: %v", err)
	}
	if _, err := session.ListRecords(ctx, query); err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if exec.callCount(query) != 2 {
		t.Errorf("expected both stores warm, got %d executions", exec.callCount(query))
	}
}

func TestSession_InvalidateMap(t *testing.T) {
	const query = "SELECT id FROM accounts"

	exec := newMockExecutor()
	exec.results[query] = []account{{ID: "1"}}

	session := newTestSession(t, exec)
	ctx := context.Background()

	if _, err := session.FetchObjects(ctx, query); err != nil {
		t.Fatalf("FetchObjects failed: %v", err)
	}
	if _, err := session.ListRecords(ctx, query); err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}

	if err := session.InvalidateMap(ctx, query); err != nil {
		t.Fatalf("InvalidateMap failed: %v", err)
	}

	if _, err := session.FetchObjects(ctx, query); err != nil {
		t.Fatalf("FetchObjects after invalidation failed: %v", err)
	}
	if exec.callCount(query) != 3 {
		t.Errorf("expected exactly one re-execution after InvalidateMap, got %d total", exec.callCount(query))
	}

	// The list store entry must survive map invalidation
	if _, err := session.ListRecords(ctx, query); err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if exec.callCount(query) != 3 {
		t.Errorf("expected list store untouched by InvalidateMap, got %d total", exec.callCount(query))
	}
}

func TestSession_InvalidateList(t *testing.T) {
	const query = "SELECT id FROM accounts"

	exec := newMockExecutor()
	exec.results[query] = []account{{ID: "1"}}

	session := newTestSession(t, exec)
	ctx := context.Background()

	if _, err := session.FetchObjects(ctx, query); err != nil {
		t.Fatalf("FetchObjects failed: %v", err)
	}
	if _, err := session.ListRecords(ctx, query); err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}

	if err := session.InvalidateList(ctx, query); err != nil {
		t.Fatalf("InvalidateList failed: %v", err)
	}

	if _, err := session.ListRecords(ctx, query); err != nil {
		t.Fatalf("ListRecords after invalidation failed: %v", err)
	}
	if exec.callCount(query) != 3 {
		t.Errorf("expected exactly one re-execution after InvalidateList, got %d total", exec.callCount(query))
	}

	// The objects store entry must survive list invalidation
	if _, err := session.FetchObjects(ctx, query); err != nil {
		t.Fatalf("FetchObjects failed: %v", err)
	}
	if exec.callCount(query) != 3 {
		t.Errorf("expected objects store untouched by InvalidateList, got %d total", exec.callCount(query))
	}
}

func TestSession_InvalidateAbsentKeyIsNoOp(t *testing.T) {
	session := newTestSession(t, newMockExecutor())
	ctx := context.Background()

	if err := session.InvalidateMap(ctx, "never cached"); err != nil {
		t.Errorf("InvalidateMap of absent key returned error: %v", err)
	}
	if err := session.InvalidateList(ctx, "never cached"); err != nil {
		t.Errorf("InvalidateList of absent key returned error: %v", err)
	}
	// Idempotent: repeating is still fine
	if err := session.InvalidateMap(ctx, "never cached"); err != nil {
		t.Errorf("repeated InvalidateMap returned error: %v", err)
	}
}

func TestSession_ClearCache(t *testing.T) {
	queries := []string{
		"SELECT id FROM accounts",
		"SELECT id FROM contacts",
	}

	exec := newMockExecutor()
	for _, query := range queries {
		exec.results[query] = []account{{ID: "1"}}
	}

	session := newTestSession(t, exec)
	ctx := context.Background()

	for _, query := range queries {
		if _, err := session.FetchObjects(ctx, query); err != nil {
			t.Fatalf("FetchObjects(%q) failed: %v", query, err)
		}
		if _, err := session.ListRecords(ctx, query); err != nil {
			t.Fatalf("ListRecords(%q) failed: %v", query, err)
		}
	}

	if err := session.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}

	for _, query := range queries {
		if _, err := session.FetchObjects(ctx, query); err != nil {
			t.Fatalf("FetchObjects(%q) after clear failed: %v", query, err)
		}
		if _, err := session.ListRecords(ctx, query); err != nil {
			t.Fatalf("ListRecords(%q) after clear failed: %v", query, err)
		}
		// 2 before clear, 2 after
		if exec.callCount(query) != 4 {
			t.Errorf("expected %q to re-execute in both stores after clear, got %d total", query, exec.callCount(query))
		}
	}
}

func TestSession_ExecutorErrorPropagatesUncached(t *testing.T) {
	const query = "SELECT bogus FROM nowhere"
	backendErr := errors.New("invalid query syntax")

	exec := newMockExecutor()
	exec.err = backendErr

	session := newTestSession(t, exec)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := session.FetchObjects(ctx, query); !errors.Is(err, backendErr) {
			t.Errorf("expected backend error to surface unchanged, got: %v", err)
		}
	}

	// Failures are never cached: every call reaches the executor
	if exec.callCount(query) != 2 {
		t.Errorf("expected a failed query to execute on every call, got %d", exec.callCount(query))
	}

	// Once the backend recovers, the next call populates normally
	exec.mu.Lock()
	exec.err = nil
	exec.results[query] = []account{{ID: "1"}}
	exec.mu.Unlock()

	got, err := session.FetchObjects(ctx, query)
	if err != nil {
		t.Fatalf("FetchObjects after recovery failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 record after recovery, got %d", len(got))
	}
}

func TestSession_QueryTextIsTheKey(t *testing.T) {
	// Textually distinct queries are distinct keys, even when semantically equal
	variants := []string{
		"SELECT id FROM accounts",
		"select id from accounts",
		"SELECT  id  FROM  accounts",
	}

	exec := newMockExecutor()
	for _, query := range variants {
		exec.results[query] = []account{{ID: "1"}}
	}

	session := newTestSession(t, exec)
	ctx := context.Background()

	for _, query := range variants {
		if _, err := session.FetchObjects(ctx, query); err != nil {
			t.Fatalf("FetchObjects(%q) failed: %v", query, err)
		}
	}

	for _, query := range variants {
		if exec.callCount(query) != 1 {
			t.Errorf("expected %q to execute once, got %d", query, exec.callCount(query))
		}
	}
}

func TestSession_ConcurrentFetchExecutesOnce(t *testing.T) {
	const query = "SELECT id, name FROM accounts"

	exec := newMockExecutor()
	exec.results[query] = []account{{ID: "1", Name: "Acme"}}
	exec.delay = 20 * time.Millisecond

	session := newTestSession(t, exec)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			got, err := session.FetchObjects(context.Background(), query)
			if err != nil {
				return err
			}
			if len(got) != 1 {
				return fmt.Errorf("expected 1 record, got %d", len(got))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent fetch failed: %v", err)
	}

	if exec.callCount(query) != 1 {
		t.Errorf("expected concurrent callers to share one execution, got %d", exec.callCount(query))
	}
}

func TestSession_WithIdentifierFunc(t *testing.T) {
	const query = "SELECT id, name FROM accounts"

	exec := newMockExecutor()
	exec.results[query] = []account{{ID: "1", Name: "Acme"}}

	session := newTestSession(t, exec, WithIdentifierFunc[account](func(r account) (string, error) {
		return r.Name, nil
	}))

	got, err := session.FetchObjects(context.Background(), query)
	if err != nil {
		t.Fatalf("FetchObjects failed: %v", err)
	}
	if _, ok := got["Acme"]; !ok {
		t.Errorf("expected record keyed by custom identifier, keys: %v", mapKeys(got))
	}
}

func TestSession_IdentifierExtractionFailureIsNotCached(t *testing.T) {
	const query = "SELECT id FROM accounts"

	exec := newMockExecutor()
	exec.results[query] = []account{{ID: "1"}}

	extractErr := errors.New("no identifier for record")
	failing := true
	session := newTestSession(t, exec, WithIdentifierFunc[account](func(r account) (string, error) {
		if failing {
			return "", extractErr
		}
		return r.ID, nil
	}))

	ctx := context.Background()
	if _, err := session.FetchObjects(ctx, query); !errors.Is(err, extractErr) {
		t.Fatalf("expected extraction error, got: %v", err)
	}

	failing = false
	got, err := session.FetchObjects(ctx, query)
	if err != nil {
		t.Fatalf("FetchObjects after extraction recovery failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected the failed population to be retried, got %d records", len(got))
	}
}

func TestSession_FixtureRecords(t *testing.T) {
	const query = "SELECT id, name FROM accounts"

	var records []account
	testsupport.LoadFixtureJSON(t, testsupport.FixturePath("accounts.json"), &records)

	exec := newMockExecutor()
	exec.results[query] = records

	session := newTestSession(t, exec)

	got, err := session.FetchObjects(context.Background(), query)
	if err != nil {
		t.Fatalf("FetchObjects failed: %v", err)
	}

	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for _, record := range records {
		if diff := cmp.Diff(record, got[record.ID]); diff != "" {
			t.Errorf("record %q mismatch (-want +got):\n%s", record.ID, diff)
		}
	}
}

func mapKeys(m map[string]account) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func BenchmarkSession_FetchObjectsHit(b *testing.B) {
	const query = "SELECT id, name FROM accounts"

	exec := newMockExecutor()
	exec.results[query] = []account{
		{ID: "1", Name: "Acme"},
		{ID: "2", Name: "Globex"},
	}

	store, err := cache.NewStore(cache.DefaultConfig())
	if err != nil {
		b.Fatalf("failed to create store: %v", err)
	}
	session := New[account](exec, store)

	ctx := context.Background()
	if _, err := session.FetchObjects(ctx, query); err != nil {
		b.Fatalf("warmup failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := session.FetchObjects(ctx, query); err != nil {
			b.Fatal(err)
		}
	}
}
