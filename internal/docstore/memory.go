package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// Memory is an in-memory Store with the same semantics as the hosted
// store. It backs tests and local development without a database.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string]bson.M // collection -> id -> document
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]bson.M)}
}

func (m *Memory) Get(ctx context.Context, collection, id string, out any) (bool, error) {
	m.mu.RLock()
	doc, ok := m.docs[collection][id]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	b, err := bson.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encode document: %w", err)
	}
	if err := bson.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode document: %w", err)
	}
	return true, nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, doc any) error {
	raw, err := toDocument(doc)
	if err != nil {
		return err
	}
	raw["_id"] = id
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]bson.M)
	}
	m.docs[collection][id] = raw
	return nil
}

func (m *Memory) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		nv, err := normalize(v)
		if err != nil {
			return err
		}
		doc[k] = nv
	}
	return nil
}

func (m *Memory) AppendToArrayField(ctx context.Context, collection, id, field string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	nv, err := normalize(value)
	if err != nil {
		return err
	}
	arr, _ := doc[field].(bson.A)
	for _, existing := range arr {
		if reflect.DeepEqual(existing, nv) {
			return nil // union semantics: deep-equal element already present
		}
	}
	doc[field] = append(arr, nv)
	return nil
}

func (m *Memory) IncrementNumericField(ctx context.Context, collection, id, field string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	switch n := doc[field].(type) {
	case nil:
		doc[field] = delta
	case int32:
		doc[field] = int64(n) + delta
	case int64:
		doc[field] = n + delta
	case float64:
		doc[field] = n + float64(delta)
	default:
		return fmt.Errorf("field %q is not numeric", field)
	}
	return nil
}

// normalize runs a value through a bson round trip so stored values use
// the same representation the decoder produces. That keeps the deep-equal
// dedup in AppendToArrayField consistent with the hosted store.
func normalize(v any) (any, error) {
	b, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return m["v"], nil
}
