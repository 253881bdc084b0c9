package cache

import "testing"

type entry struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

func testStore() *Store {
	return New(nil, map[string]MergePolicy{
		"list":    Replace,
		"summary": ShallowMerge,
	})
}

func TestStore_WriteRead(t *testing.T) {
	s := testStore()

	if _, ok := Read[[]entry](s, "list"); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := s.Write("list", []entry{{ID: "a", Amount: 1}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, ok := Read[[]entry](s, "list")
	if !ok || len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected [a], got %v (ok=%v)", got, ok)
	}
}

func TestStore_ReplacePolicy(t *testing.T) {
	s := testStore()

	s.Write("list", []entry{{ID: "a"}, {ID: "b"}})
	s.Write("list", []entry{{ID: "c"}})

	got, _ := Read[[]entry](s, "list")
	if len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("replace policy should keep only the incoming value, got %v", got)
	}
}

func TestStore_ShallowMergePolicy(t *testing.T) {
	s := testStore()

	s.Write("summary", map[string]any{"savingSum": 100.0, "netWorth": 500.0})
	s.Write("summary", map[string]any{"netWorth": 600.0})

	got, _ := Read[map[string]float64](s, "summary")
	if got["savingSum"] != 100 {
		t.Fatalf("shallow merge should keep untouched fields, got %v", got)
	}
	if got["netWorth"] != 600 {
		t.Fatalf("shallow merge should overwrite incoming fields, got %v", got)
	}
}

func TestUpdate_Outcomes(t *testing.T) {
	s := testStore()

	if outcome := Update(s, "list", func(v []entry) []entry { return v }); outcome != Skipped {
		t.Fatalf("update on missing key should be skipped, got %v", outcome)
	}

	s.Write("list", []entry{{ID: "a", Amount: 1}})
	outcome := Update(s, "list", func(v []entry) []entry {
		return append(v, entry{ID: "b", Amount: 2})
	})
	if outcome != Applied {
		t.Fatalf("expected applied, got %v", outcome)
	}
	got, _ := Read[[]entry](s, "list")
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
}

func TestOptimistic_RollbackRestoresBase(t *testing.T) {
	s := testStore()
	s.Write("list", []entry{{ID: "a", Amount: 1}})

	layer := s.Begin()
	outcome := UpdateIn(layer, "list", func(v []entry) []entry {
		return append(v, entry{ID: "tmp", Amount: 5})
	})
	if outcome != Applied {
		t.Fatalf("expected applied, got %v", outcome)
	}

	// The overlay is visible while the layer is open.
	got, _ := Read[[]entry](s, "list")
	if len(got) != 2 {
		t.Fatalf("expected overlay visible, got %v", got)
	}

	layer.Rollback()
	got, _ = Read[[]entry](s, "list")
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("rollback should restore the base value exactly, got %v", got)
	}
}

func TestOptimistic_CommitDropsLayerOnly(t *testing.T) {
	s := testStore()
	s.Write("list", []entry{{ID: "a", Amount: 1}})

	layer := s.Begin()
	UpdateIn(layer, "list", func(v []entry) []entry {
		return append(v, entry{ID: "tmp", Amount: 5})
	})
	layer.Commit()

	// Commit discards the overlay; the base write happens separately with the
	// confirmed payload.
	got, _ := Read[[]entry](s, "list")
	if len(got) != 1 {
		t.Fatalf("commit alone should not touch the base, got %v", got)
	}

	Update(s, "list", func(v []entry) []entry {
		return append(v, entry{ID: "real", Amount: 5})
	})
	got, _ = Read[[]entry](s, "list")
	if len(got) != 2 || got[1].ID != "real" {
		t.Fatalf("expected confirmed entry in base, got %v", got)
	}
}

func TestOptimistic_SkippedOnMissingKey(t *testing.T) {
	s := testStore()
	layer := s.Begin()
	defer layer.Rollback()

	if outcome := UpdateIn(layer, "list", func(v []entry) []entry { return v }); outcome != Skipped {
		t.Fatalf("expected skipped on missing key, got %v", outcome)
	}
}

func TestOptimistic_DoubleDiscardIsNoop(t *testing.T) {
	s := testStore()
	s.Write("list", []entry{{ID: "a"}})

	first := s.Begin()
	second := s.Begin()
	UpdateIn(second, "list", func(v []entry) []entry { return append(v, entry{ID: "x"}) })

	first.Commit()
	first.Rollback()

	// Discarding first twice must not remove second's layer.
	got, _ := Read[[]entry](s, "list")
	if len(got) != 2 {
		t.Fatalf("second layer should still be visible, got %v", got)
	}
	second.Rollback()
}

func TestStore_Clear(t *testing.T) {
	s := testStore()
	s.Write("list", []entry{{ID: "a"}})
	layer := s.Begin()
	UpdateIn(layer, "list", func(v []entry) []entry { return append(v, entry{ID: "b"}) })

	s.Clear()

	if _, ok := Read[[]entry](s, "list"); ok {
		t.Fatal("clear should drop base entries and layers")
	}
}

func TestStore_Evict(t *testing.T) {
	s := testStore()
	s.Write("list", []entry{{ID: "a"}})
	s.Evict("list")
	if _, ok := Read[[]entry](s, "list"); ok {
		t.Fatal("expected miss after evict")
	}
}
