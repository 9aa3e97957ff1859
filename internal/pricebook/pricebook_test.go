package pricebook

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func newTestBook(t *testing.T) (*Book, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.json")
	return New(path, zap.NewNop()), path
}

func TestSetThenGet(t *testing.T) {
	book, _ := newTestBook(t)

	if err := book.Set("7", 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := book.Get("7"); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}

	if err := book.Set("7", 2.5); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := book.Get("7"); got != 2.5 {
		t.Fatalf("expected overwrite to 2.5, got %v", got)
	}
}

func TestGetUnsetReturnsZero(t *testing.T) {
	book, _ := newTestBook(t)
	if got := book.Get("missing"); got != 0 {
		t.Fatalf("expected 0 for unset gift, got %v", got)
	}
}

func TestSetValidation(t *testing.T) {
	book, _ := newTestBook(t)

	if err := book.Set("", 1); !errors.Is(err, ErrInvalidGift) {
		t.Fatalf("expected ErrInvalidGift, got %v", err)
	}
	if err := book.Set("7", -1); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice for negative, got %v", err)
	}
	if err := book.Set("7", math.NaN()); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice for NaN, got %v", err)
	}
	if err := book.Set("7", math.Inf(1)); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice for Inf, got %v", err)
	}
}

func TestPersistsAcrossReload(t *testing.T) {
	book, path := newTestBook(t)
	if err := book.Set("7", 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := book.Set("9", 1.25); err != nil {
		t.Fatalf("set: %v", err)
	}

	reloaded := New(path, zap.NewNop())
	if got := reloaded.Get("7"); got != 5 {
		t.Fatalf("expected 5 after reload, got %v", got)
	}
	if got := reloaded.Get("9"); got != 1.25 {
		t.Fatalf("expected 1.25 after reload, got %v", got)
	}
}

func TestPersistedFileIsWholeDocument(t *testing.T) {
	book, path := newTestBook(t)
	if err := book.Set("7", 5); err != nil {
		t.Fatalf("set: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	prices := map[string]float64{}
	if err := json.Unmarshal(raw, &prices); err != nil {
		t.Fatalf("persisted table is not valid JSON: %v", err)
	}
	if prices["7"] != 5 {
		t.Fatalf("expected persisted price 5, got %v", prices["7"])
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	book := New(path, zap.NewNop())
	if got := book.Get("7"); got != 0 {
		t.Fatalf("expected empty book, got %v", got)
	}
	if err := book.Set("7", 3); err != nil {
		t.Fatalf("set after corrupt load: %v", err)
	}
}

func TestConcurrentWritersDoNotCorrupt(t *testing.T) {
	book, path := newTestBook(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = book.Set("7", float64(n*10+j))
				_ = book.Get("7")
			}
		}(i)
	}
	wg.Wait()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	prices := map[string]float64{}
	if err := json.Unmarshal(raw, &prices); err != nil {
		t.Fatalf("table corrupted by concurrent writers: %v", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	book, _ := newTestBook(t)
	_ = book.Set("7", 5)

	snapshot := book.Snapshot()
	snapshot["7"] = 99

	if got := book.Get("7"); got != 5 {
		t.Fatalf("snapshot mutation leaked into book: %v", got)
	}
}
