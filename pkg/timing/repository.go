package timing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	// GetRowsForBranch returns the branch's rows in insertion order.
	GetRowsForBranch(ctx context.Context, branchId int) ([]StoredTimingRow, error)
	DeleteForBranch(ctx context.Context, branchId int) (int, error)
	InsertRows(ctx context.Context, rows []StoredTimingRow) (int, error)
}

const timingColumns = 7

type repositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepo(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

// getQueryer returns the transaction when one is open, the pool otherwise
func (r *repositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&repositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetRowsForBranch(ctx context.Context, branchId int) ([]StoredTimingRow, error) {
	query := `SELECT
    			t.id,
    			t.branch_id,
    			t.day_of_week,
    			t.start_date::text,
    			t.end_date::text,
    			t.open_time::text,
    			t.close_time::text,
    			t.is_closed
			  FROM timings t
			  WHERE t.branch_id = $1
			  ORDER BY t.id`
	rows, err := r.getQueryer().Query(ctx, query, branchId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StoredTimingRow
	for rows.Next() {
		var row StoredTimingRow
		var day string
		if err := rows.Scan(
			&row.Id,
			&row.BranchId,
			&day,
			&row.StartDate,
			&row.EndDate,
			&row.OpenTime,
			&row.CloseTime,
			&row.IsClosed,
		); err != nil {
			return nil, err
		}
		row.DayOfWeek = Weekday(day)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repositoryImpl) DeleteForBranch(ctx context.Context, branchId int) (int, error) {
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM timings WHERE branch_id = $1`, branchId)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func (r *repositoryImpl) InsertRows(ctx context.Context, rows []StoredTimingRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var valuesBuilder strings.Builder
	args := make([]any, 0, len(rows)*timingColumns)
	for idx, row := range rows {
		if idx > 0 {
			valuesBuilder.WriteByte(',')
		}
		p := idx*timingColumns + 1
		fmt.Fprintf(&valuesBuilder, "($%d, $%d, $%d::text::date, $%d::text::date, $%d::text::time, $%d::text::time, $%d)",
			p, p+1, p+2, p+3, p+4, p+5, p+6)

		args = append(args,
			row.BranchId,
			string(row.DayOfWeek),
			row.StartDate,
			row.EndDate,
			row.OpenTime,
			row.CloseTime,
			row.IsClosed,
		)
	}

	query := fmt.Sprintf(`INSERT INTO timings (
                            branch_id,
                            day_of_week,
                            start_date,
                            end_date,
                            open_time,
                            close_time,
                            is_closed
                  ) VALUES %s`, valuesBuilder.String())

	result, err := r.getQueryer().Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}
