package storage

import "sync"

// MemStore is an in-process, map-backed Store. It is the default
// backend: per the resource policy in spec.md §5, in-process map
// types are sufficient for correctness, and this is what every test
// in this repo runs against.
type MemStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		buckets: make(map[string]map[string][]byte),
	}
}

func (m *MemStore) bucket(name []byte) map[string][]byte {
	b, ok := m.buckets[string(name)]
	if !ok {
		b = make(map[string][]byte)
		m.buckets[string(name)] = b
	}
	return b
}

// Put implements Store.
func (m *MemStore) Put(bucket, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.bucket(bucket)[string(key)] = v
	return nil
}

// Get implements Store.
func (m *MemStore) Get(bucket, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buckets[string(bucket)]
	if !ok {
		return nil, ErrNotFound
	}
	v, ok := b[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Delete implements Store.
func (m *MemStore) Delete(bucket, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[string(bucket)]
	if !ok {
		return nil
	}
	delete(b, string(key))
	return nil
}

// ForEach implements Store.
func (m *MemStore) ForEach(bucket []byte, fn func(key, value []byte) error) error {
	m.mu.RLock()
	// Snapshot the bucket under the lock, then call fn outside it so
	// fn may itself call back into the store without deadlocking.
	b, ok := m.buckets[string(bucket)]
	snapshot := make(map[string][]byte, len(b))
	for k, v := range b {
		snapshot[k] = v
	}
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	for k, v := range snapshot {
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Store. MemStore holds no external resources.
func (m *MemStore) Close() error {
	return nil
}
