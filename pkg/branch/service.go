package branch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/libradesk/libradesk/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

var ErrBranchNameRequired = errors.New("branch name is required")

type Service interface {
	ListBranches(ctx context.Context) ([]Branch, error)
	GetBranch(ctx context.Context, id int) (Branch, error)
	CreateBranch(ctx context.Context, name string, address string) (Branch, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) ListBranches(ctx context.Context) ([]Branch, error) {
	branches, err := s.repo.ListBranches(ctx)
	if err != nil {
		log.Errorf("failed to list branches: %v", err)
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}

func (s *ServiceImpl) GetBranch(ctx context.Context, id int) (Branch, error) {
	return s.repo.GetBranch(ctx, id)
}

func (s *ServiceImpl) CreateBranch(ctx context.Context, name string, address string) (Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Branch{}, ErrBranchNameRequired
	}
	created, err := s.repo.CreateBranch(ctx, name, strings.TrimSpace(address))
	if err != nil {
		log.Errorf("failed to create branch %q: %v", name, err)
		return Branch{}, err
	}
	log.Debugf("created branch %d (%s)", created.Id, created.Name)

	if s.eventBus != nil {
		err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.BranchCreatedEvent, event_bus.BranchCreated{
			Id:      created.Id,
			Name:    created.Name,
			Address: created.Address,
		}))
		if err != nil {
			// the branch row exists either way
			log.Warnf("branch %d created but subscribers failed: %v", created.Id, err)
		}
	}
	return created, nil
}
