package flags

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/sebr/inception-bridge/internal/infrastructure/config"
	"github.com/sebr/inception-bridge/internal/infrastructure/database"
	"github.com/sebr/inception-bridge/migrations"
)

// openTestRepo opens a migrated temporary database.
func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "flags.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

// failingRepo returns errors from Save.
type failingRepo struct {
	mu    sync.Mutex
	saved Flags
	fail  bool
}

func (r *failingRepo) Load(context.Context, string) (Flags, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved, nil
}

func (r *failingRepo) Save(_ context.Context, _ string, f Flags) (Flags, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return Flags{}, errors.New("disk full")
	}
	r.saved = f
	return f, nil
}

func TestFlags_Allows(t *testing.T) {
	tests := []struct {
		name     string
		flags    Flags
		category string
		want     bool
	}{
		{"all off", Flags{}, "Access", false},
		{"global only", Flags{Global: true}, "Access", false},
		{"category only", Flags{Access: true}, "Access", false},
		{"global and category", Flags{Global: true, Access: true}, "Access", true},
		{"other category", Flags{Global: true, Access: true}, "Security", false},
		{"hardware", Flags{Global: true, Hardware: true}, "Hardware", true},
		{"unknown never passes", Flags{Global: true, System: true, Audit: true, Access: true, Security: true, Hardware: true}, "Unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.Allows(tt.category); got != tt.want {
				t.Errorf("Allows(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestFlags_EnabledCategories(t *testing.T) {
	f := Flags{Hardware: true, System: true, Access: true}
	want := []string{"System", "Access", "Hardware"}
	if got := f.EnabledCategories(); !reflect.DeepEqual(got, want) {
		t.Errorf("EnabledCategories() = %v, want %v", got, want)
	}
	if got := (Flags{}).EnabledCategories(); len(got) != 0 {
		t.Errorf("EnabledCategories() on zero flags = %v", got)
	}
}

func TestSQLiteRepository_LoadDefaultsOff(t *testing.T) {
	repo := openTestRepo(t)

	f, err := repo.Load(context.Background(), "review_events")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f != (Flags{}) {
		t.Errorf("Load() of unsaved key = %+v, want all off", f)
	}
}

func TestSQLiteRepository_SaveLoad(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, "review_events", Flags{Global: true, Security: true})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("Save() did not set UpdatedAt")
	}

	got, err := repo.Load(ctx, "review_events")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.UpdatedAt.Equal(saved.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, saved.UpdatedAt)
	}
	got.UpdatedAt, saved.UpdatedAt = time.Time{}, time.Time{}
	if got != saved {
		t.Errorf("Load() = %+v, want %+v", got, saved)
	}

	// Upsert replaces every switch.
	if _, err := repo.Save(ctx, "review_events", Flags{Audit: true}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	got, _ = repo.Load(ctx, "review_events")
	if got.Global || got.Security || !got.Audit {
		t.Errorf("after upsert Load() = %+v", got)
	}

	// Keys are independent.
	other, _ := repo.Load(ctx, "other")
	if other != (Flags{}) {
		t.Errorf("Load(other) = %+v, want all off", other)
	}
}

func TestSQLiteRepository_EmptyKey(t *testing.T) {
	repo := openTestRepo(t)
	if _, err := repo.Load(context.Background(), ""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Load(\"\") error = %v, want ErrInvalidKey", err)
	}
	if _, err := repo.Save(context.Background(), "", Flags{}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Save(\"\") error = %v, want ErrInvalidKey", err)
	}
}

func TestGate(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	gate, err := NewGate(ctx, repo, "review_events")
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}
	if gate.Key() != "review_events" {
		t.Errorf("Key() = %q", gate.Key())
	}
	if gate.Allows("Access") {
		t.Error("fresh gate allows Access")
	}

	if _, err := gate.Update(ctx, Flags{Global: true, Access: true}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !gate.Allows("Access") || gate.Allows("System") {
		t.Errorf("after Update Flags() = %+v", gate.Flags())
	}

	// A new gate on the same key sees the persisted state.
	reloaded, err := NewGate(ctx, repo, "review_events")
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}
	if !reloaded.Allows("Access") {
		t.Error("persisted flags not loaded")
	}
}

func TestGate_UpdateFailureKeepsCache(t *testing.T) {
	repo := &failingRepo{saved: Flags{Global: true, System: true}}
	gate, err := NewGate(context.Background(), repo, "k")
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	repo.fail = true
	if _, err := gate.Update(context.Background(), Flags{}); err == nil {
		t.Fatal("Update() = nil, want error")
	}
	if !gate.Allows("System") {
		t.Error("cache changed after failed Update")
	}
}

func TestGate_ConcurrentAccess(t *testing.T) {
	gate, _ := NewGate(context.Background(), &failingRepo{}, "k")

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			gate.Update(context.Background(), Flags{Global: i%2 == 0, Audit: true}) //nolint:errcheck // exercised for races
		}()
		go func() {
			defer wg.Done()
			_ = gate.Allows("Audit")
		}()
	}
	wg.Wait()
}
