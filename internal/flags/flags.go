// Package flags holds the persistent session flags that gate navigation.
// Flags are string-valued and treated as booleans by presence-check,
// matching the document they replace. Lifecycle: set at onboarding and
// account events, read by every gate decision, cleared at logout (except
// the onboarding flag, which outlives the session).
package flags

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Flag keys.
const (
	KeyOnboarded      = "isOnBoarded"
	KeyAccountCreated = "isAccountCreated"
	KeyAccountSetup   = "isAccountSetup"
	KeyLoggedIn       = "isLoggedIn"
)

// Store is a file-backed string key/value store. Every mutation persists
// immediately.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// Open loads the flag file, creating its directory if needed. A missing
// file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]string)}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read flags: %w", err)
	}
	if err := json.Unmarshal(b, &s.values); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	return s, nil
}

// Set stores a flag value and persists.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.save()
}

// IsSet reports whether the key is present, regardless of value.
func (s *Store) IsSet(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// Clear removes the given keys and persists.
func (s *Store) Clear(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return s.save()
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create flag dir: %w", err)
	}
	b, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write flags: %w", err)
	}
	return nil
}

// Scope is a per-user view of the store with the flag lifecycle helpers.
// An empty uid scopes to the bare keys.
type Scope struct {
	store *Store
	uid   string
}

// For returns the scope for one user.
func (s *Store) For(uid string) *Scope {
	return &Scope{store: s, uid: uid}
}

func (c *Scope) key(k string) string {
	if c.uid == "" {
		return k
	}
	return c.uid + "." + k
}

func (c *Scope) MarkOnboarded() error      { return c.store.Set(c.key(KeyOnboarded), "true") }
func (c *Scope) MarkAccountCreated() error { return c.store.Set(c.key(KeyAccountCreated), "true") }
func (c *Scope) MarkAccountSetup() error   { return c.store.Set(c.key(KeyAccountSetup), "true") }
func (c *Scope) MarkLoggedIn() error       { return c.store.Set(c.key(KeyLoggedIn), "true") }

func (c *Scope) Onboarded() bool      { return c.store.IsSet(c.key(KeyOnboarded)) }
func (c *Scope) AccountCreated() bool { return c.store.IsSet(c.key(KeyAccountCreated)) }
func (c *Scope) AccountSetup() bool   { return c.store.IsSet(c.key(KeyAccountSetup)) }
func (c *Scope) LoggedIn() bool       { return c.store.IsSet(c.key(KeyLoggedIn)) }

// Logout clears the session flags. The onboarding flag survives.
func (c *Scope) Logout() error {
	return c.store.Clear(c.key(KeyLoggedIn), c.key(KeyAccountCreated), c.key(KeyAccountSetup))
}
