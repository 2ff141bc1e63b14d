package repositories

import (
	"encoding/json"
	"fmt"
)

// GetJSON loads key from kv and decodes it into v. It reports false when the
// key is absent.
func GetJSON(kv KV, key string, v any) (bool, error) {
	raw, ok, err := kv.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := unmarshalEntity([]byte(raw), v); err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(kv KV, key string, v any) error {
	data, err := marshalEntity(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return kv.Set(key, string(data))
}

// marshalEntity marshals an entity to JSON
func marshalEntity(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
