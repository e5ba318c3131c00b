// Package memstore is the in-process table store behind the memory adapters.
//
// All bounded contexts share one Store so that a single Update can touch
// products, dealers, carts and orders under the same lock. Writes made inside
// an Update are journaled and rolled back when the callback returns an error.
package memstore

import (
	"errors"
	"sync"
)

// ErrReadOnly is returned when a write is attempted inside View.
var ErrReadOnly = errors.New("memstore: write in read-only transaction")

// Store holds named tables of opaque values keyed by string identifiers.
// Callers are expected to store copies and clone on read.
type Store struct {
	mu     sync.RWMutex
	tables map[string]map[string]any
}

// New returns an empty store.
func New() *Store {
	return &Store{tables: map[string]map[string]any{}}
}

// View runs fn under the shared read lock.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{store: s})
}

// Update runs fn under the exclusive lock. Every change made through tx is
// reverted when fn returns an error or panics.
func (s *Store) Update(fn func(tx *Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{store: s, writable: true}
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			panic(r)
		}
		if err != nil {
			tx.rollback()
		}
	}()
	return fn(tx)
}

// Tx is a handle valid only for the duration of a View or Update callback.
type Tx struct {
	store    *Store
	writable bool
	journal  []change
}

type change struct {
	table   string
	key     string
	value   any
	existed bool
}

// Get returns the raw value stored under table/key.
func (tx *Tx) Get(table, key string) (any, bool) {
	rows, ok := tx.store.tables[table]
	if !ok {
		return nil, false
	}
	value, ok := rows[key]
	return value, ok
}

// Put stores value under table/key.
func (tx *Tx) Put(table, key string, value any) error {
	if !tx.writable {
		return ErrReadOnly
	}
	rows, ok := tx.store.tables[table]
	if !ok {
		rows = map[string]any{}
		tx.store.tables[table] = rows
	}
	previous, existed := rows[key]
	tx.journal = append(tx.journal, change{table: table, key: key, value: previous, existed: existed})
	rows[key] = value
	return nil
}

// Delete removes table/key. Deleting an absent key is a no-op.
func (tx *Tx) Delete(table, key string) error {
	if !tx.writable {
		return ErrReadOnly
	}
	rows, ok := tx.store.tables[table]
	if !ok {
		return nil
	}
	previous, existed := rows[key]
	if !existed {
		return nil
	}
	tx.journal = append(tx.journal, change{table: table, key: key, value: previous, existed: true})
	delete(rows, key)
	return nil
}

// Len reports the number of rows in table.
func (tx *Tx) Len(table string) int {
	return len(tx.store.tables[table])
}

// Scan visits every row of table until fn returns false. Order is unspecified.
func (tx *Tx) Scan(table string, fn func(key string, value any) bool) {
	for key, value := range tx.store.tables[table] {
		if !fn(key, value) {
			return
		}
	}
}

func (tx *Tx) rollback() {
	for i := len(tx.journal) - 1; i >= 0; i-- {
		c := tx.journal[i]
		rows := tx.store.tables[c.table]
		if c.existed {
			rows[c.key] = c.value
		} else {
			delete(rows, c.key)
		}
	}
	tx.journal = nil
}

// Get is the typed form of Tx.Get.
func Get[T any](tx *Tx, table, key string) (T, bool) {
	var zero T
	raw, ok := tx.Get(table, key)
	if !ok {
		return zero, false
	}
	value, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return value, true
}

// Scan is the typed form of Tx.Scan; rows of another type are skipped.
func Scan[T any](tx *Tx, table string, fn func(key string, value T) bool) {
	tx.Scan(table, func(key string, raw any) bool {
		value, ok := raw.(T)
		if !ok {
			return true
		}
		return fn(key, value)
	})
}
