// Package pricebook maintains the durable gift-id to unit-price table.
package pricebook

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrInvalidGift  = errors.New("invalid_gift_id")
	ErrInvalidPrice = errors.New("invalid_price")
)

// Book is a mutable gift price table persisted as a single JSON document.
// Writes replace the whole file atomically so readers never observe a
// partially written table.
type Book struct {
	mu     sync.RWMutex
	path   string
	prices map[string]float64
	log    *zap.Logger
}

func New(path string, log *zap.Logger) *Book {
	b := &Book{
		path:   path,
		prices: make(map[string]float64),
		log:    log.Named("pricebook"),
	}
	b.load()
	return b
}

func (b *Book) load() {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			b.log.Warn("price book unreadable, starting empty", zap.Error(err))
		}
		return
	}
	prices := make(map[string]float64)
	if err := json.Unmarshal(raw, &prices); err != nil {
		b.log.Warn("price book corrupt, starting empty", zap.Error(err))
		return
	}
	b.prices = prices
}

// Set stores the unit price for a gift and persists the full table.
func (b *Book) Set(giftID string, price float64) error {
	giftID = strings.TrimSpace(giftID)
	if giftID == "" {
		return ErrInvalidGift
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return ErrInvalidPrice
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.prices[giftID] = price
	return b.persistLocked()
}

// Get returns the unit price for a gift, or 0 when none is set.
func (b *Book) Get(giftID string) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.prices[strings.TrimSpace(giftID)]
}

// Snapshot returns a copy of the current table.
func (b *Book) Snapshot() map[string]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]float64, len(b.prices))
	for id, price := range b.prices {
		out[id] = price
	}
	return out
}

func (b *Book) persistLocked() error {
	raw, err := json.MarshalIndent(b.prices, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, ".prices-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
