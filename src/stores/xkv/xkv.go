// Package xkv wraps the go-zero kv store used for query-result caching.
package xkv

import (
	"strconv"

	"github.com/zeromicro/go-zero/core/stores/kv"
)

// Store embeds the go-zero kv client.
type Store struct {
	kv.Store
}

func NewStore(c kv.KvConf) *Store {
	return &Store{Store: kv.NewStore(c)}
}

// GetInt64 reads an integer value; a missing key yields ok == false.
func (s *Store) GetInt64(key string) (int64, bool, error) {
	raw, err := s.Get(key)
	if err != nil {
		return 0, false, err
	}
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// SetInt64 writes an integer value with a ttl in seconds.
func (s *Store) SetInt64(key string, value int64, seconds int) error {
	return s.Setex(key, strconv.FormatInt(value, 10), seconds)
}
