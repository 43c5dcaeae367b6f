package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"shelfguard-hq/shelfguard/pkg/policy/rules"
	"shelfguard-hq/shelfguard/pkg/suggest"
)

func testRun(id string, created time.Time) *Run {
	return &Run{
		ID:            id,
		CreatedAt:     created,
		Market:        "AE",
		Categories:    []string{"Pet Supplies"},
		ClientSKU:     "B00CLIENT",
		CompetitorSKU: "B00RIVAL",
		Errors:        1,
		Warnings:      2,
		Approved:      false,
		Findings: []rules.Finding{
			{Section: rules.SectionTitle, RuleID: "core:TITLE_LENGTH", Passed: false,
				Message: "core:TITLE_LENGTH – Keep titles concise.", Severity: rules.SeverityError},
		},
		Suggestions: []suggest.Recommendation{
			{Section: rules.SectionTitle, Title: "Shorten title", Before: "a", After: "b"},
		},
		Report: "# Report\n",
	}
}

// storeFactories lets every behavior test run against both backends.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"sqlite": func() Store {
			path := filepath.Join(t.TempDir(), "history.db")
			store, err := NewSQLiteStore(DefaultSQLiteConfig(path), nil)
			if err != nil {
				t.Fatalf("NewSQLiteStore() error = %v", err)
			}
			return store
		},
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory()
			defer store.Close()

			ctx := context.Background()
			want := testRun("run-1", time.Now().UTC().Truncate(time.Second))

			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := store.Get(ctx, "run-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}

			if got.ID != want.ID || got.Market != want.Market {
				t.Errorf("Get() = %+v, want %+v", got, want)
			}
			if len(got.Findings) != 1 || got.Findings[0].RuleID != "core:TITLE_LENGTH" {
				t.Errorf("findings not round-tripped: %+v", got.Findings)
			}
			if len(got.Suggestions) != 1 || got.Suggestions[0].Title != "Shorten title" {
				t.Errorf("suggestions not round-tripped: %+v", got.Suggestions)
			}
			if got.Report != "# Report\n" {
				t.Errorf("Report = %q", got.Report)
			}
			if got.Approved {
				t.Error("Approved = true, want false")
			}
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory()
			defer store.Close()

			_, err := store.Get(context.Background(), "no-such-run")
			if !errors.Is(err, ErrRunNotFound) {
				t.Errorf("Get() error = %v, want ErrRunNotFound", err)
			}
		})
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory()
			defer store.Close()

			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)
			for i, id := range []string{"old", "mid", "new"} {
				run := testRun(id, base.Add(time.Duration(i)*time.Minute))
				if err := store.Save(ctx, run); err != nil {
					t.Fatalf("Save(%s) error = %v", id, err)
				}
			}

			runs, err := store.List(ctx, 2)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(runs) != 2 {
				t.Fatalf("List() returned %d runs, want 2", len(runs))
			}
			if runs[0].ID != "new" || runs[1].ID != "mid" {
				t.Errorf("List() order = [%s, %s], want [new, mid]", runs[0].ID, runs[1].ID)
			}
		})
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	run := testRun("run-1", time.Now())
	if err := store.Save(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	got.Market = "DE"

	again, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Market != "AE" {
		t.Errorf("mutating a returned run leaked into the store: Market = %q", again.Market)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(DefaultSQLiteConfig(path), nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := store.Save(ctx, testRun("run-1", time.Now().UTC())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(DefaultSQLiteConfig(path), nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.Get(ctx, "run-1"); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}

func TestSQLiteStore_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(DefaultSQLiteConfig(path), nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if _, err := store.db.Exec(insertSchemaVersion, SchemaVersion+1); err != nil {
		t.Fatalf("failed to record future schema version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := NewSQLiteStore(DefaultSQLiteConfig(path), nil); err == nil {
		t.Fatal("NewSQLiteStore() error = nil, want error for newer schema version")
	}
}
