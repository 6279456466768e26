package tariff

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gramoorja/landedcost/internal/metrics"
)

// Holder serves the current catalog snapshot. Handlers take one snapshot per
// request; Reload swaps in a new one only when loading succeeds.
type Holder struct {
	src Source

	mu       sync.RWMutex
	cat      *Catalog
	err      error
	loadedAt time.Time
}

// NewHolder returns a Holder with nothing loaded yet.
func NewHolder(src Source) *Holder {
	return &Holder{src: src, err: &LoadError{Source: src.Name(), Err: errors.New("not loaded yet")}}
}

// Current returns the served catalog, or the load error when none has ever
// loaded successfully.
func (h *Holder) Current() (*Catalog, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.cat == nil {
		return nil, h.err
	}
	return h.cat, nil
}

// LoadedAt is the time of the last successful load.
func (h *Holder) LoadedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loadedAt
}

// Reload loads the source again. On failure the previous snapshot, if any,
// stays in service and the error is returned.
func (h *Holder) Reload(ctx context.Context) error {
	cat, err := Load(ctx, h.src)
	if err != nil {
		metrics.UpdateCatalogMetrics(0, 0, err)
	} else {
		metrics.UpdateCatalogMetrics(cat.Len(), len(cat.Warnings()), nil)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		if h.cat == nil {
			h.err = err
		}
		log.Printf("tariff: reload from %s failed: %v", h.src.Name(), err)
		return err
	}
	h.cat = cat
	h.err = nil
	h.loadedAt = time.Now()
	log.Printf("tariff: loaded %d rows from %s (%d warnings)", cat.Len(), cat.Source(), len(cat.Warnings()))
	return nil
}
