package branch

import (
	"context"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu       sync.RWMutex
	branches map[int]Branch
	nextId   int
	listErr  error
	err      error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		branches: make(map[int]Branch),
		nextId:   1,
	}
}

func (r *RepositoryStub) ListBranches(ctx context.Context) ([]Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.listErr != nil {
		return nil, r.listErr
	}
	var result []Branch
	for _, b := range r.branches {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].Id < result[j].Id
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *RepositoryStub) GetBranch(ctx context.Context, id int) (Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return Branch{}, r.err
	}
	b, ok := r.branches[id]
	if !ok {
		return Branch{}, ErrBranchNotFound
	}
	return b, nil
}

func (r *RepositoryStub) CreateBranch(ctx context.Context, name string, address string) (Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return Branch{}, r.err
	}
	b := Branch{Id: r.nextId, Name: name, Address: address}
	r.branches[b.Id] = b
	r.nextId++
	return b, nil
}

// Helper methods for test setup

func (r *RepositoryStub) SetListError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErr = err
}

func (r *RepositoryStub) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.branches = make(map[int]Branch)
	r.nextId = 1
	r.listErr = nil
	r.err = nil
}
