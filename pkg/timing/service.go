package timing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/libradesk/libradesk/internal/event_bus"
	"github.com/libradesk/libradesk/pkg/branch"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrDeletePhase means the save failed before anything changed in storage.
	ErrDeletePhase = errors.New("failed to delete existing timings")
	// ErrInsertPhase means the old rows were deleted but the new ones were not
	// written; a non-transactional save leaves the branch without rows.
	ErrInsertPhase = errors.New("failed to insert timings")
	// ErrOverrideWithoutDates rejects overrides that would be stored as weekly rows.
	ErrOverrideWithoutDates = errors.New("override needs a start or end date")
)

type BranchReader interface {
	GetBranch(ctx context.Context, id int) (branch.Branch, error)
}

type Service interface {
	// Load reads a branch's rows and collapses them into an editing view.
	Load(ctx context.Context, branchId int) (BranchTimingView, error)
	// Save replaces all stored rows of the view's branch with its expansion.
	Save(ctx context.Context, view BranchTimingView) error
	EffectiveHours(ctx context.Context, branchId int, date time.Time) (EffectiveHours, error)
}

type ServiceImpl struct {
	repo          Repository
	branches      BranchReader
	eventBus      *event_bus.EventBus
	transactional bool
}

func NewService(repo Repository, branches BranchReader, eventBus *event_bus.EventBus, transactional bool) *ServiceImpl {
	return &ServiceImpl{
		repo:          repo,
		branches:      branches,
		eventBus:      eventBus,
		transactional: transactional,
	}
}

func (s *ServiceImpl) Load(ctx context.Context, branchId int) (BranchTimingView, error) {
	b, err := s.branches.GetBranch(ctx, branchId)
	if err != nil {
		incLoad(resultFailed)
		if errors.Is(err, branch.ErrBranchNotFound) {
			return BranchTimingView{}, err
		}
		log.Errorf("failed to get branch %d: %v", branchId, err)
		return BranchTimingView{}, err
	}
	rows, err := s.repo.GetRowsForBranch(ctx, branchId)
	if err != nil {
		incLoad(resultFailed)
		log.Errorf("failed to get timings for branch %d: %v", branchId, err)
		return BranchTimingView{}, err
	}
	incLoad(resultOK)
	view := Collapse(b.Id, b.Name, rows)
	log.Debugf("loaded %d timing rows for branch %d into %d overrides", len(rows), branchId, len(view.Overrides))
	return view, nil
}

func (s *ServiceImpl) Save(ctx context.Context, view BranchTimingView) error {
	for _, o := range view.Overrides {
		if o.StartDate == "" && o.EndDate == "" {
			incSave(resultRejected)
			return fmt.Errorf("%w: override %s", ErrOverrideWithoutDates, o.Id)
		}
	}

	rows := Expand(view)
	var err error
	if s.transactional {
		err = s.repo.WithTransaction(ctx, func(repo Repository) error {
			return replaceRows(ctx, repo, view.BranchId, rows)
		})
	} else {
		err = replaceRows(ctx, s.repo, view.BranchId, rows)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrDeletePhase):
			incSave(resultDeleteFailed)
		case errors.Is(err, ErrInsertPhase):
			incSave(resultInsertFailed)
		default:
			incSave(resultFailed)
		}
		log.Errorf("failed to save timings for branch %d: %v", view.BranchId, err)
		return err
	}
	incSave(resultOK)

	if s.eventBus != nil {
		err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.TimingsSavedEvent, event_bus.TimingsSaved{
			BranchId:      view.BranchId,
			RowCount:      len(rows),
			OverrideCount: len(view.Overrides),
			Transactional: s.transactional,
		}))
		if err != nil {
			log.Warnf("timings saved for branch %d but subscribers failed: %v", view.BranchId, err)
		}
	}
	return nil
}

// replaceRows deletes every row of the branch, then inserts rows.
func replaceRows(ctx context.Context, repo Repository, branchId int, rows []StoredTimingRow) error {
	deleted, err := repo.DeleteForBranch(ctx, branchId)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeletePhase, err)
	}
	inserted, err := repo.InsertRows(ctx, rows)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInsertPhase, err)
	}
	log.Debugf("replaced %d timing rows with %d for branch %d", deleted, inserted, branchId)
	return nil
}

// EffectiveHours resolves a date against the stored hours, ignoring any
// unsaved edits.
func (s *ServiceImpl) EffectiveHours(ctx context.Context, branchId int, date time.Time) (EffectiveHours, error) {
	view, err := s.Load(ctx, branchId)
	if err != nil {
		return EffectiveHours{}, err
	}
	return ResolveHours(view, date), nil
}
