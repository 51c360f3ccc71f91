package secrets

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store for development and tests. Nothing
// survives a restart; production deployments configure Vault.
type MemoryStore struct {
	mu     sync.RWMutex
	creds  map[string]ClientCredentials
	tokens map[string]Token
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		creds:  make(map[string]ClientCredentials),
		tokens: make(map[string]Token),
	}
}

func (s *MemoryStore) ClientCredentials(_ context.Context, connectorKey, schemeName string) (ClientCredentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.creds[connectorKey+"/"+schemeName]
	if !ok {
		return ClientCredentials{}, ErrNotFound
	}
	return creds, nil
}

func (s *MemoryStore) PutClientCredentials(_ context.Context, connectorKey, schemeName string, creds ClientCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[connectorKey+"/"+schemeName] = creds
	return nil
}

func (s *MemoryStore) Token(_ context.Context, connectorKey, schemeName string) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.tokens[connectorKey+"/"+schemeName]
	if !ok {
		return Token{}, ErrNotFound
	}
	return tok, nil
}

func (s *MemoryStore) PutToken(_ context.Context, connectorKey, schemeName string, tok Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[connectorKey+"/"+schemeName] = tok
	return nil
}
