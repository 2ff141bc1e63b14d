package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestKV(t *testing.T) *BadgerKV {
	kv, err := OpenBadgerKV("")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestBadgerKV(t *testing.T) {
	kv := setupTestKV(t)

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := kv.Get("nope")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set get remove", func(t *testing.T) {
		require.NoError(t, kv.Set(KeyAuthToken, "token-1"))
		v, ok, err := kv.Get(KeyAuthToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "token-1", v)

		require.NoError(t, kv.Set(KeyAuthToken, "token-2"))
		v, _, _ = kv.Get(KeyAuthToken)
		assert.Equal(t, "token-2", v)

		require.NoError(t, kv.Remove(KeyAuthToken))
		_, ok, err = kv.Get(KeyAuthToken)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("remove missing key", func(t *testing.T) {
		assert.NoError(t, kv.Remove("never-set"))
	})

	t.Run("keys are namespaced", func(t *testing.T) {
		require.NoError(t, kv.Clear())
		require.NoError(t, kv.Set("a", "1"))
		require.NoError(t, kv.Set("b", "2"))
		require.NoError(t, kv.DB().Update(func(txn *badger.Txn) error {
			return txn.Set([]byte("other:c"), []byte("3"))
		}))

		keys, err := kv.Keys()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, keys)
	})
}

func TestBadgerKVPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	kv, err := OpenBadgerKV(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set(KeyCurrentUser, `{"id":1}`))
	require.NoError(t, kv.Close())

	reopened, err := OpenBadgerKV(dir)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(KeyCurrentUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":1}`, v)
}

func TestBadgerKVBorrowedDB(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	kv := NewBadgerKV(db)
	require.NoError(t, kv.Set("k", "v"))
	require.NoError(t, kv.Close())

	// The borrowed database stays usable after the KV is closed.
	_, ok, err := kv.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	kv := setupTestKV(t)

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var out record
	ok, err := GetJSON(kv, "rec", &out)
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(kv, "rec", record{Name: "a", Count: 2}))
	ok, err = GetJSON(kv, "rec", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, record{Name: "a", Count: 2}, out)

	require.NoError(t, kv.Set("broken", "{not json"))
	_, err = GetJSON(kv, "broken", &out)
	assert.Error(t, err)
}
