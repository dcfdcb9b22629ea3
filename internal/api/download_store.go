package api

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// bundleDownload is one downloadable generated document.
type bundleDownload struct {
	filePath  string
	fileName  string
	expiresAt time.Time
}

// downloadStore hands out short-lived tokens for generated documents so
// the files never need a predictable URL.
type downloadStore struct {
	mu    sync.Mutex
	items map[string]bundleDownload
}

func newDownloadStore() *downloadStore {
	return &downloadStore{
		items: make(map[string]bundleDownload),
	}
}

func (s *downloadStore) put(filePath, fileName string, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = newRandomToken(24)
	s.items[token] = bundleDownload{
		filePath:  filePath,
		fileName:  fileName,
		expiresAt: time.Now().Add(ttl),
	}
	return token
}

func (s *downloadStore) get(token string) (bundleDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	v, ok := s.items[token]
	if !ok {
		return bundleDownload{}, false
	}
	if time.Now().After(v.expiresAt) {
		delete(s.items, token)
		return bundleDownload{}, false
	}
	return v, true
}

func (s *downloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
