package cache

import (
	"errors"
	"time"

	crawlerrors "sjsage522/discountcrawler/pkg/errors"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheService implements CacheService on memcached, so cooldowns survive
// restarts and are shared between workers
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a memcache-backed cache for serverAddr
func NewMemcacheService(serverAddr string, timeout time.Duration) *MemcacheService {
	client := memcache.New(serverAddr)
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &MemcacheService{client: client}
}

// Ping checks that every server answers
func (m *MemcacheService) Ping() error {
	if err := m.client.Ping(); err != nil {
		return crawlerrors.NewCache("memcache", "server unreachable", err)
	}
	return nil
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, crawlerrors.NewCache("memcache", "get "+key, err)
	}
	return item.Value, nil
}

// Set stores a value; memcache expirations have one-second resolution
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	err := m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(expiration / time.Second),
	})
	if err != nil {
		return crawlerrors.NewCache("memcache", "set "+key, err)
	}
	return nil
}

// Delete removes a value; deleting an absent key is not an error
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return crawlerrors.NewCache("memcache", "delete "+key, err)
	}
	return nil
}
