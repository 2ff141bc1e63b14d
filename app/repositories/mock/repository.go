package mock

import (
	"errors"
	"sort"
	"sync"

	"bizdash/app/repositories"
)

var _ repositories.KV = (*KV)(nil)

// KV is an in-memory KV for tests. Setting
// FailWith makes every call return that error.
type KV struct {
	data     map[string]string
	mutex    sync.RWMutex
	FailWith error
	writes   int
}

// ErrUnavailable is a convenience error for simulating storage failures.
var ErrUnavailable = errors.New("storage unavailable")

func NewKV() *KV {
	return &KV{data: make(map[string]string)}
}

func (m *KV) Get(key string) (string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.FailWith != nil {
		return "", false, m.FailWith
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *KV) Set(key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.data[key] = value
	m.writes++
	return nil
}

func (m *KV) Remove(key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	delete(m.data, key)
	m.writes++
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *KV) Keys() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Writes counts successful Set and Remove calls.
func (m *KV) Writes() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.writes
}

func (m *KV) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data = make(map[string]string)
}
