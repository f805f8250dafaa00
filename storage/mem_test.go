package storage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perun-network/icp-adjudicator-go/storage"
)

func TestMemStoreGetMissingReturnsErrNotFound(t *testing.T) {
	s := storage.NewMemStore()
	_, err := s.Get([]byte("bucket"), []byte("key"))
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestMemStorePutGetRoundtrip(t *testing.T) {
	s := storage.NewMemStore()
	require.NoError(t, s.Put([]byte("bucket"), []byte("key"), []byte("value")))

	v, err := s.Get([]byte("bucket"), []byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), v)
}

func TestMemStoreGetReturnsCopy(t *testing.T) {
	s := storage.NewMemStore()
	require.NoError(t, s.Put([]byte("bucket"), []byte("key"), []byte("value")))

	v, err := s.Get([]byte("bucket"), []byte("key"))
	require.NoError(t, err)
	v[0] = 'X'

	v2, err := s.Get([]byte("bucket"), []byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), v2)
}

func TestMemStoreDeleteIsIdempotent(t *testing.T) {
	s := storage.NewMemStore()
	require.NoError(t, s.Delete([]byte("bucket"), []byte("key")))

	require.NoError(t, s.Put([]byte("bucket"), []byte("key"), []byte("value")))
	require.NoError(t, s.Delete([]byte("bucket"), []byte("key")))

	_, err := s.Get([]byte("bucket"), []byte("key"))
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestMemStoreForEach(t *testing.T) {
	s := storage.NewMemStore()
	require.NoError(t, s.Put([]byte("bucket"), []byte("a"), []byte("1")))
	require.NoError(t, s.Put([]byte("bucket"), []byte("b"), []byte("2")))

	seen := map[string]string{}
	require.NoError(t, s.ForEach([]byte("bucket"), func(key, value []byte) error {
		seen[string(key)] = string(value)
		return nil
	}))
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, seen)
}

func TestMemStoreForEachPropagatesError(t *testing.T) {
	s := storage.NewMemStore()
	require.NoError(t, s.Put([]byte("bucket"), []byte("a"), []byte("1")))

	boom := errors.New("boom")
	err := s.ForEach([]byte("bucket"), func(key, value []byte) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestMemStoreBucketsAreIndependent(t *testing.T) {
	s := storage.NewMemStore()
	require.NoError(t, s.Put([]byte("bucket1"), []byte("key"), []byte("v1")))
	require.NoError(t, s.Put([]byte("bucket2"), []byte("key"), []byte("v2")))

	v1, err := s.Get([]byte("bucket1"), []byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v1)

	v2, err := s.Get([]byte("bucket2"), []byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), v2)
}
