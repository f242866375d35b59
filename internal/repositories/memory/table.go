// Package memory holds in-memory repository implementations used by tests.
package memory

import (
	"sort"
	"sync"

	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// table is a concurrency-safe map of documents keyed by ObjectID. It stores and hands out copies.
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[primitive.ObjectID]*T
	id    func(*T) primitive.ObjectID
	clone func(*T) *T
}

func newTable[T any](id func(*T) primitive.ObjectID, clone func(*T) *T) *table[T] {
	if clone == nil {
		clone = func(v *T) *T {
			c := *v
			return &c
		}
	}
	return &table[T]{rows: make(map[primitive.ObjectID]*T), id: id, clone: clone}
}

// insert stores v unless another row conflicts with it, mirroring a unique index
func (t *table[T]) insert(v *T, conflict func(a, b *T) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conflicts(v, conflict) {
		return repositories.ErrDuplicate
	}
	t.rows[t.id(v)] = t.clone(v)
	return nil
}

func (t *table[T]) conflicts(v *T, conflict func(a, b *T) bool) bool {
	if conflict == nil {
		return false
	}
	for id, row := range t.rows {
		if id != t.id(v) && conflict(row, v) {
			return true
		}
	}
	return false
}

func (t *table[T]) get(id primitive.ObjectID) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return t.clone(v), nil
}

func (t *table[T]) replace(v *T, conflict func(a, b *T) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[t.id(v)]; !ok {
		return repositories.ErrNotFound
	}
	if t.conflicts(v, conflict) {
		return repositories.ErrDuplicate
	}
	t.rows[t.id(v)] = t.clone(v)
	return nil
}

func (t *table[T]) remove(id primitive.ObjectID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

// first returns a copy of the first row accepted by match
func (t *table[T]) first(match func(*T) bool) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, v := range t.rows {
		if match(v) {
			return t.clone(v), nil
		}
	}
	return nil, repositories.ErrNotFound
}

// filter returns copies of the rows accepted by match, ordered by less
func (t *table[T]) filter(match func(*T) bool, less func(a, b *T) bool) []*T {
	t.mu.RLock()
	out := []*T{}
	for _, v := range t.rows {
		if match == nil || match(v) {
			out = append(out, t.clone(v))
		}
	}
	t.mu.RUnlock()

	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func (t *table[T]) count(match func(*T) bool) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var n int64
	for _, v := range t.rows {
		if match == nil || match(v) {
			n++
		}
	}
	return n
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return nil
	}
	return append([]primitive.ObjectID{}, ids...)
}

func cloneIDPtr(id *primitive.ObjectID) *primitive.ObjectID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
