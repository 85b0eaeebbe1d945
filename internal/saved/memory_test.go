package saved

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryStoreSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Save(ctx, "user-1", "ev-1", "first notes"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rows, err := store.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("List returned %d rows, want 1", len(rows))
	}
	original := rows[0]

	// A duplicate save succeeds without touching the existing row.
	if err := store.Save(ctx, "user-1", "ev-1", "different notes"); err != nil {
		t.Fatalf("duplicate Save: %v", err)
	}

	rows, err = store.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("List returned %d rows after duplicate save, want 1", len(rows))
	}
	if rows[0].ID != original.ID {
		t.Error("duplicate save replaced the existing row")
	}
	if rows[0].Notes != "first notes" {
		t.Errorf("Notes = %q after duplicate save, want %q", rows[0].Notes, "first notes")
	}
	if !rows[0].SavedAt.Equal(original.SavedAt) {
		t.Error("duplicate save changed SavedAt")
	}
}

func TestInMemoryStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	// Saves land with distinct timestamps; List must return newest first.
	for _, id := range []string{"ev-old", "ev-mid", "ev-new"} {
		if err := store.Save(ctx, "user-1", id, ""); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	rows, err := store.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("List returned %d rows, want 3", len(rows))
	}
	want := []string{"ev-new", "ev-mid", "ev-old"}
	for i, id := range want {
		if rows[i].EventID != id {
			t.Fatalf("row %d = %s, want %s (got order %v)", i, rows[i].EventID, id, eventIDs(rows))
		}
	}
}

func TestInMemoryStoreUnsave(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Save(ctx, "user-1", "ev-1", ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Unsave(ctx, "user-1", "ev-1"); err != nil {
		t.Fatalf("Unsave: %v", err)
	}

	ok, err := store.IsSaved(ctx, "user-1", "ev-1")
	if err != nil {
		t.Fatalf("IsSaved: %v", err)
	}
	if ok {
		t.Error("IsSaved = true after unsave")
	}

	if err := store.Unsave(ctx, "user-1", "ev-1"); err != ErrNotSaved {
		t.Errorf("second Unsave = %v, want ErrNotSaved", err)
	}
	if err := store.Unsave(ctx, "user-1", "never-saved"); err != ErrNotSaved {
		t.Errorf("Unsave of unknown event = %v, want ErrNotSaved", err)
	}
}

func TestInMemoryStoreUpdateNotes(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Save(ctx, "user-1", "ev-1", "old"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.UpdateNotes(ctx, "user-1", "ev-1", "meet at the back entrance"); err != nil {
		t.Fatalf("UpdateNotes: %v", err)
	}

	rows, err := store.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if rows[0].Notes != "meet at the back entrance" {
		t.Errorf("Notes = %q, want updated text", rows[0].Notes)
	}

	if err := store.UpdateNotes(ctx, "user-1", "never-saved", "x"); err != ErrNotSaved {
		t.Errorf("UpdateNotes on unknown event = %v, want ErrNotSaved", err)
	}
}

func TestInMemoryStoreIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Save(ctx, "user-1", "ev-1", ""); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rows, err := store.List(ctx, "user-2")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("List(user-2) returned %d rows, want 0", len(rows))
	}
	if err := store.Unsave(ctx, "user-2", "ev-1"); err != ErrNotSaved {
		t.Errorf("Unsave across users = %v, want ErrNotSaved", err)
	}
}

func TestInMemoryStoreRejectsEmptyUser(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Save(ctx, "", "ev-1", ""); err != ErrEmptyUserID {
		t.Errorf("Save = %v, want ErrEmptyUserID", err)
	}
	if _, err := store.List(ctx, ""); err != ErrEmptyUserID {
		t.Errorf("List = %v, want ErrEmptyUserID", err)
	}
	if err := store.Unsave(ctx, "", "ev-1"); err != ErrEmptyUserID {
		t.Errorf("Unsave = %v, want ErrEmptyUserID", err)
	}
}

func eventIDs(rows []*SavedEvent) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.EventID
	}
	return ids
}
