package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sicko7947/slims"
)

// MemoryStore implements slims.RunStore using in-memory storage
type MemoryStore struct {
	executions map[string]*slims.StepExecution // runGUID#index -> execution
	mu         sync.RWMutex
}

// NewMemoryStore creates a new in-memory run tracker
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		executions: make(map[string]*slims.StepExecution),
	}
}

func (s *MemoryStore) Begin(ctx context.Context, exec *slims.StepExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := exec.Key()
	if _, exists := s.executions[key]; exists {
		return fmt.Errorf("step execution %s already in flight", key)
	}

	// Copy
	execCopy := *exec
	if execCopy.Status == "" {
		execCopy.Status = slims.StepStatusReceived
	}
	now := time.Now()
	if execCopy.StartedAt.IsZero() {
		execCopy.StartedAt = now
	}
	execCopy.UpdatedAt = now
	s.executions[key] = &execCopy

	return nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, runGUID string, index int, status slims.StepStatus) error {
	if status.IsTerminal() {
		return fmt.Errorf("status %s is terminal, use Complete", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exec, exists := s.executions[slims.ExecutionKey(runGUID, index)]
	if !exists {
		return notFound(runGUID, index)
	}

	exec.Status = status
	exec.UpdatedAt = time.Now()

	return nil
}

func (s *MemoryStore) Complete(ctx context.Context, runGUID string, index int, status slims.StepStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("status %s is not terminal", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := slims.ExecutionKey(runGUID, index)
	if _, exists := s.executions[key]; !exists {
		return notFound(runGUID, index)
	}
	delete(s.executions, key)

	return nil
}

func (s *MemoryStore) Get(ctx context.Context, runGUID string, index int) (*slims.StepExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exec, exists := s.executions[slims.ExecutionKey(runGUID, index)]
	if !exists {
		return nil, notFound(runGUID, index)
	}

	execCopy := *exec
	return &execCopy, nil
}

func (s *MemoryStore) List(ctx context.Context, filter slims.RunFilter) ([]*slims.StepExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	execs := make([]*slims.StepExecution, 0, len(s.executions))
	for _, exec := range s.executions {
		// Apply filters
		if filter.FlowID != "" && exec.FlowID != filter.FlowID {
			continue
		}
		if filter.Status != nil && exec.Status != *filter.Status {
			continue
		}

		execCopy := *exec
		execs = append(execs, &execCopy)
	}

	// Oldest first
	sort.Slice(execs, func(i, j int) bool {
		if execs[i].StartedAt.Equal(execs[j].StartedAt) {
			return execs[i].Key() < execs[j].Key()
		}
		return execs[i].StartedAt.Before(execs[j].StartedAt)
	})

	if filter.Limit > 0 && len(execs) > filter.Limit {
		execs = execs[:filter.Limit]
	}

	return execs, nil
}

// Len returns the number of in-flight executions
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.executions)
}

func notFound(runGUID string, index int) error {
	return &slims.LookupError{Kind: "step execution", Name: slims.ExecutionKey(runGUID, index)}
}

var _ slims.RunStore = (*MemoryStore)(nil)
