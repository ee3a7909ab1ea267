package secret

import (
	"crypto/subtle"
	"fmt"
	"sync"
)

var (
	ErrSecretNotFound = fmt.Errorf("secret not found")
	ErrEmptyKey       = fmt.Errorf("key cannot be empty")
	ErrEmptyValue     = fmt.Errorf("value cannot be empty")
)

type Store interface {
	// Get retrieves a secret by its key.
	Get(key string) (string, error)
	// Set stores a secret with the given key and value.
	Set(key, value string) error

	Close() error
}

// Verifier checks a presented credential against the stored ones.
type Verifier interface {
	Verify(token string) bool
}

// InMemoryStore keeps secrets for the lifetime of the process. It is safe for
// concurrent use by request handlers.
type InMemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		secrets: make(map[string]string),
	}
}

// NewTokenStore returns a store holding each token under its own value, as
// used for bearer token checks.
func NewTokenStore(tokens ...string) (*InMemoryStore, error) {
	store := NewInMemoryStore()
	for _, token := range tokens {
		if err := store.Set(token, token); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *InMemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.secrets[key]
	if !exists {
		return "", ErrSecretNotFound
	}
	return value, nil
}

// Verify reports whether token equals a stored value. Every value is
// compared in constant time, so the timing does not depend on which one matches.
func (s *InMemoryStore) Verify(token string) bool {
	if token == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := 0
	for _, value := range s.secrets {
		matched |= subtle.ConstantTimeCompare([]byte(value), []byte(token))
	}
	return matched == 1
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.secrets)
}

func (s *InMemoryStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if value == "" {
		return ErrEmptyValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[key] = value
	return nil
}

func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.secrets) > 0 {
		s.secrets = make(map[string]string)
	}
	return nil
}
