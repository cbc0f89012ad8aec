package timing

import (
	"context"
	"slices"
	"sync"
)

type RepositoryStub struct {
	mu        sync.Mutex
	rows      []StoredTimingRow
	nextId    int
	getErr    error
	deleteErr error
	insertErr error
	getCalls  int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{nextId: 1}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	originalRows := slices.Clone(r.rows)
	originalNextId := r.nextId
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.rows = originalRows
		r.nextId = originalNextId
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) GetRowsForBranch(ctx context.Context, branchId int) ([]StoredTimingRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	var result []StoredTimingRow
	for _, row := range r.rows {
		if row.BranchId == branchId {
			result = append(result, row)
		}
	}
	return result, nil
}

func (r *RepositoryStub) DeleteForBranch(ctx context.Context, branchId int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	before := len(r.rows)
	r.rows = slices.DeleteFunc(r.rows, func(row StoredTimingRow) bool { return row.BranchId == branchId })
	return before - len(r.rows), nil
}

func (r *RepositoryStub) InsertRows(ctx context.Context, rows []StoredTimingRow) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.insertErr != nil {
		return 0, r.insertErr
	}
	for _, row := range rows {
		row.Id = r.nextId
		r.nextId++
		r.rows = append(r.rows, row)
	}
	return len(rows), nil
}

// Helper methods for test setup

func (r *RepositoryStub) SetRows(rows []StoredTimingRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	for _, row := range rows {
		row.Id = r.nextId
		r.nextId++
		r.rows = append(r.rows, row)
	}
}

func (r *RepositoryStub) Rows(branchId int) []StoredTimingRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []StoredTimingRow
	for _, row := range r.rows {
		if row.BranchId == branchId {
			result = append(result, row)
		}
	}
	return result
}

func (r *RepositoryStub) GetCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getCalls
}

func (r *RepositoryStub) SetGetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getErr = err
}

func (r *RepositoryStub) SetDeleteError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteErr = err
}

func (r *RepositoryStub) SetInsertError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertErr = err
}
