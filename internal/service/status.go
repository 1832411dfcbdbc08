package service

import (
	"context"
	"fmt"

	"github.com/folio/folio/internal/metrics"
	"github.com/folio/folio/internal/model"
	"github.com/folio/folio/internal/store"
)

// StatusService handles status check creation and listing.
type StatusService struct {
	store   StatusStore
	factory *model.Factory
	metrics metrics.Recorder
}

// NewStatusService creates a new StatusService.
func NewStatusService(st StatusStore, factory *model.Factory, recorder metrics.Recorder) *StatusService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &StatusService{
		store:   st,
		factory: factory,
		metrics: recorder,
	}
}

// Create records a status check for clientName. The name is stored as
// given; it only has to contain something other than whitespace.
func (s *StatusService) Create(ctx context.Context, clientName string) (*model.StatusCheck, error) {
	if isBlank(clientName) {
		return nil, fmt.Errorf("%w: client_name is required", ErrInvalidInput)
	}

	sc := s.factory.NewStatusCheck(clientName)
	if err := s.store.InsertStatusCheck(ctx, sc); err != nil {
		s.metrics.IncStoreFailure(store.StatusChecksCollection)
		return nil, fmt.Errorf("%w: insert status check: %w", ErrPersistence, err)
	}

	s.metrics.IncStatusCheckCreated()
	return sc, nil
}

// List returns up to model.MaxStatusChecks status checks in insertion
// order. The result is never nil.
func (s *StatusService) List(ctx context.Context) ([]*model.StatusCheck, error) {
	checks, err := s.store.ListStatusChecks(ctx, model.MaxStatusChecks)
	if err != nil {
		s.metrics.IncStoreFailure(store.StatusChecksCollection)
		return nil, fmt.Errorf("%w: list status checks: %w", ErrPersistence, err)
	}
	if checks == nil {
		checks = []*model.StatusCheck{}
	}
	return checks, nil
}
