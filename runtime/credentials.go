package runtime

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
)

// CredentialProperty describes one field a credential of some type stores.
type CredentialProperty struct {
	Name        string
	DisplayName string
	Required    bool
	Password    bool
	Description string
}

// CredentialType declares how credentials of a kind are stored, injected into
// requests and tested.
type CredentialType struct {
	Name             string
	DisplayName      string
	DocumentationURL string
	Properties       []CredentialProperty

	// Headers maps a request header to the credential property whose value it carries.
	Headers map[string]string

	// Test is the request used to check a stored credential.
	Test *RequestSpec
}

// CredentialStore holds credential types and the values configured for them.
// Credentials are stored under their type name.
type CredentialStore struct {
	mu     sync.RWMutex
	types  map[string]CredentialType
	values map[string]map[string]string
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		types:  make(map[string]CredentialType),
		values: make(map[string]map[string]string),
	}
}

// RegisterType adds a credential type. Registering the same name twice replaces it.
func (s *CredentialStore) RegisterType(t CredentialType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[t.Name] = t
}

// Type returns the credential type registered under name.
func (s *CredentialStore) Type(name string) (CredentialType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[name]
	return t, ok
}

// Names returns the names of all registered credential types, sorted.
func (s *CredentialStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set stores values for the credential name after checking required properties.
func (s *CredentialStore) Set(name string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.types[name]
	if !ok {
		return fmt.Errorf("unknown credential type: %s", name)
	}

	for _, p := range t.Properties {
		if p.Required && values[p.Name] == "" {
			return fmt.Errorf("credential %s: property '%s' is required", name, p.Name)
		}
	}

	stored := make(map[string]string, len(values))
	for k, v := range values {
		stored[k] = v
	}
	s.values[name] = stored
	return nil
}

// AuthHeaders returns the headers to inject for the credential name.
func (s *CredentialStore) AuthHeaders(name string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.types[name]
	if !ok {
		return nil, fmt.Errorf("unknown credential type: %s", name)
	}
	values, ok := s.values[name]
	if !ok {
		return nil, fmt.Errorf("credential %s is not configured", name)
	}

	headers := make(map[string]string, len(t.Headers))
	for header, property := range t.Headers {
		headers[header] = values[property]
	}
	return headers, nil
}

// Test runs the credential type's test request through requester.
func (s *CredentialStore) Test(ctx context.Context, requester AuthenticatedRequester, name string) error {
	t, ok := s.Type(name)
	if !ok {
		return fmt.Errorf("unknown credential type: %s", name)
	}
	if t.Test == nil {
		return fmt.Errorf("credential type %s has no test request", name)
	}

	spec := *t.Test
	if spec.Method == "" {
		spec.Method = http.MethodGet
	}

	if _, err := requester.PerformAuthenticatedRequest(ctx, name, spec); err != nil {
		return fmt.Errorf("credential test for %s failed: %w", name, err)
	}
	return nil
}
