package store

import (
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	rec := Record{
		ID:       "g1",
		StartFEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		Moves:    []string{"e2e4", "e7e5"},
		FEN:      "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
	}
	if err := s.SaveGame(rec); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadGame("g1")
	if err != nil {
		t.Fatal(err)
	}
	if got.StartFEN != rec.StartFEN || got.FEN != rec.FEN || len(got.Moves) != 2 || got.Moves[1] != "e7e5" {
		t.Fatalf("loaded %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt not stamped")
	}

	rec.Moves = append(rec.Moves, "g1f3")
	rec.Result = "checkmate"
	if err := s.SaveGame(rec); err != nil {
		t.Fatal(err)
	}
	got, _ = s.LoadGame("g1")
	if len(got.Moves) != 3 || got.Result != "checkmate" {
		t.Fatalf("overwrite lost: %+v", got)
	}
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadGame("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := s.SaveGame(Record{}); err == nil {
		t.Fatal("record without id should be refused")
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)
	for _, id := range []string{"b", "a", "c"} {
		if err := s.SaveGame(Record{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	recs, err := s.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 || recs[0].ID != "a" || recs[2].ID != "c" {
		t.Fatalf("list = %+v", recs)
	}
	if err := s.DeleteGame("b"); err != nil {
		t.Fatal(err)
	}
	recs, _ = s.ListGames()
	if len(recs) != 2 {
		t.Fatalf("%d games after delete", len(recs))
	}
}
