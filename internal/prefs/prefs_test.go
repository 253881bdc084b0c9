package prefs

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "prefs.db"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_StringRoundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.GetString(ctx, UIKey("theme")); err != nil || ok {
		t.Fatalf("expected miss on fresh store, ok=%v err=%v", ok, err)
	}

	if err := store.SetString(ctx, UIKey("theme"), "dark"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}
	got, ok, err := store.GetString(ctx, UIKey("theme"))
	if err != nil || !ok || got != "dark" {
		t.Fatalf("expected dark, got %q ok=%v err=%v", got, ok, err)
	}

	// Upsert overwrites.
	store.SetString(ctx, UIKey("theme"), "light")
	got, _, _ = store.GetString(ctx, UIKey("theme"))
	if got != "light" {
		t.Fatalf("expected light after overwrite, got %q", got)
	}
}

func TestStore_BoolEncoding(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if got, err := store.GetBool(ctx, UIKey("hide_archived"), true); err != nil || !got {
		t.Fatalf("missing key should return fallback, got %v err=%v", got, err)
	}

	store.SetBool(ctx, UIKey("hide_archived"), false)
	if got, _ := store.GetBool(ctx, UIKey("hide_archived"), true); got {
		t.Fatal("expected stored false to win over fallback")
	}

	raw, _, _ := store.GetString(ctx, UIKey("hide_archived"))
	if raw != "0" {
		t.Fatalf("booleans are stored as 1/0, got %q", raw)
	}
}

func TestStore_JSONRoundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	type profile struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}

	var out profile
	if ok, err := store.GetJSON(ctx, ProfileKey, &out); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	store.SetJSON(ctx, ProfileKey, profile{ID: "u1", Username: "adri"})
	ok, err := store.GetJSON(ctx, ProfileKey, &out)
	if err != nil || !ok || out.ID != "u1" || out.Username != "adri" {
		t.Fatalf("roundtrip failed: %+v ok=%v err=%v", out, ok, err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.SetString(ctx, ProfileKey, "x")
	if err := store.Delete(ctx, ProfileKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.GetString(ctx, ProfileKey); ok {
		t.Fatal("expected miss after delete")
	}

	// Deleting a missing key is not an error.
	if err := store.Delete(ctx, ProfileKey); err != nil {
		t.Fatalf("Delete on missing key failed: %v", err)
	}
}

func TestKeys(t *testing.T) {
	if UIKey("dashboard", "u1") != "finanz:ui:dashboard:u1" {
		t.Fatalf("unexpected key: %s", UIKey("dashboard", "u1"))
	}
	if DashboardKey("u1") != DashboardKey("u1") {
		t.Fatal("dashboard key must be deterministic")
	}
	if DashboardKey("u1") == DashboardKey("u2") {
		t.Fatal("dashboard keys must be user-scoped")
	}
}
