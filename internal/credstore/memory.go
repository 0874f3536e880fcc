package credstore

import (
	"context"
	"sync"

	"github.com/eventhive/eventhive-go/internal/models"
)

// Memory keeps credentials in process memory. Used by tests and as the
// fallback when no durable backend is configured.
type Memory struct {
	mu sync.RWMutex

	profile    *models.UserProfile
	access     string
	refresh    string
	hasAccess  bool
	hasRefresh bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SaveProfile(_ context.Context, profile models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := profile.Clone()
	m.profile = &p
	return nil
}

func (m *Memory) Profile(_ context.Context) (models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.profile == nil {
		return models.UserProfile{}, ErrNotStored
	}
	return m.profile.Clone(), nil
}

func (m *Memory) ClearProfile(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profile = nil
	return nil
}

func (m *Memory) SaveAccessToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.access = token
	m.hasAccess = true
	return nil
}

func (m *Memory) AccessToken(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.hasAccess {
		return "", ErrNotStored
	}
	return m.access, nil
}

func (m *Memory) ClearAccessToken(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.access = ""
	m.hasAccess = false
	return nil
}

func (m *Memory) SaveRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refresh = token
	m.hasRefresh = true
	return nil
}

func (m *Memory) RefreshToken(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.hasRefresh {
		return "", ErrNotStored
	}
	return m.refresh, nil
}

func (m *Memory) ClearRefreshToken(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refresh = ""
	m.hasRefresh = false
	return nil
}
