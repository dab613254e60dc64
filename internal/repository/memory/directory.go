package memory

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// DirectoryStore holds agents and groups; it satisfies both
// repository.AgentRepository and repository.GroupRepository.
type DirectoryStore struct {
	mu     sync.RWMutex
	agents map[string]domain.Agent
	groups map[string]domain.Group
}

// NewDirectoryStore builds an empty store.
func NewDirectoryStore() *DirectoryStore {
	return &DirectoryStore{
		agents: make(map[string]domain.Agent),
		groups: make(map[string]domain.Group),
	}
}

// AddAgent registers an agent.
func (s *DirectoryStore) AddAgent(agent domain.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.ID] = agent
}

// AddGroup registers a group.
func (s *DirectoryStore) AddGroup(group domain.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[group.ID] = group
}

func (s *DirectoryStore) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &agent, nil
}

// Groups returns a GroupRepository view over the same store.
func (s *DirectoryStore) Groups() *GroupView {
	return &GroupView{store: s}
}

// GroupView adapts DirectoryStore to repository.GroupRepository.
type GroupView struct {
	store *DirectoryStore
}

func (v *GroupView) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	group, ok := v.store.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &group, nil
}
