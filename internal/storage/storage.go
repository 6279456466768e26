package storage

import "context"

// Storage abstracts persistence of the tariff reference table.
type Storage interface {
	// ListTariffs returns every stored row ordered by Position.
	ListTariffs(ctx context.Context) ([]Tariff, error)
	// ReplaceTariffs swaps the whole table for list in one transaction.
	ReplaceTariffs(ctx context.Context, list []Tariff) error

	Ping(ctx context.Context) error

	// Close releases any resources (no-op for in-memory).
	Close() error
}
