package branch

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrBranchNotFound = errors.New("branch not found")

type Repository interface {
	// ListBranches returns all branches ordered by name.
	ListBranches(ctx context.Context) ([]Branch, error)
	GetBranch(ctx context.Context, id int) (Branch, error)
	CreateBranch(ctx context.Context, name string, address string) (Branch, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListBranches(ctx context.Context) ([]Branch, error) {
	query := `SELECT id, name, address, manager_id FROM library_branches ORDER BY name, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.Id, &b.Name, &b.Address, &b.ManagerId); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *repositoryImpl) GetBranch(ctx context.Context, id int) (Branch, error) {
	query := `SELECT id, name, address, manager_id FROM library_branches WHERE id = $1`
	var b Branch
	err := r.db.QueryRow(ctx, query, id).Scan(&b.Id, &b.Name, &b.Address, &b.ManagerId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Branch{}, ErrBranchNotFound
		}
		return Branch{}, fmt.Errorf("could not get branch: %w", err)
	}
	return b, nil
}

func (r *repositoryImpl) CreateBranch(ctx context.Context, name string, address string) (Branch, error) {
	query := `INSERT INTO library_branches (name, address) VALUES ($1, $2)
			  RETURNING id, name, address, manager_id`
	var b Branch
	err := r.db.QueryRow(ctx, query, name, address).Scan(&b.Id, &b.Name, &b.Address, &b.ManagerId)
	if err != nil {
		return Branch{}, fmt.Errorf("could not create branch: %w", err)
	}
	return b, nil
}
