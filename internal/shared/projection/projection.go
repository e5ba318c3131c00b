// Package projection pairs a read-side entity with its storage timestamps.
package projection

import "time"

// Metadata holds the timestamps storage keeps alongside an entity.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projection is an entity as read back from storage.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// Of wraps entity with its storage timestamps.
func Of[T any](entity T, createdAt, updatedAt time.Time) *Projection[T] {
	return &Projection[T]{Entity: entity, Metadata: Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt}}
}

// Stamp returns metadata for a write at now. An existing row keeps its original CreatedAt.
func Stamp(existing *Metadata, now time.Time) Metadata {
	meta := Metadata{CreatedAt: now, UpdatedAt: now}
	if existing != nil && !existing.CreatedAt.IsZero() {
		meta.CreatedAt = existing.CreatedAt
	}
	return meta
}
