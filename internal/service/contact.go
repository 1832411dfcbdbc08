package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/folio/folio/internal/metrics"
	"github.com/folio/folio/internal/model"
	"github.com/folio/folio/internal/store"
)

// ContactService accepts contact form submissions.
type ContactService struct {
	store      ContactStore
	dispatcher Dispatcher
	factory    *model.Factory
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// NewContactService creates a new ContactService. A nil dispatcher
// disables notifications.
func NewContactService(st ContactStore, dispatcher Dispatcher, factory *model.Factory, logger *slog.Logger, recorder metrics.Recorder) *ContactService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ContactService{
		store:      st,
		dispatcher: dispatcher,
		factory:    factory,
		logger:     logger.With("component", "service.contact"),
		metrics:    recorder,
	}
}

// Submit stores a contact message and then triggers the operator
// notification. The notification runs only after an acknowledged write,
// and its outcome never changes the result.
func (s *ContactService) Submit(ctx context.Context, in model.ContactMessageInput) (*model.ContactMessage, error) {
	if err := validateContactInput(in); err != nil {
		return nil, err
	}

	msg := s.factory.NewContactMessage(in)
	if err := s.store.InsertContactMessage(ctx, msg); err != nil {
		s.metrics.IncStoreFailure(store.ContactSubmissionsCollection)
		return nil, fmt.Errorf("%w: insert contact message: %w", ErrPersistence, err)
	}
	s.metrics.IncContactMessageCreated()

	s.dispatch(ctx, msg)
	return msg, nil
}

// dispatch runs the dispatcher, absorbing errors and panics.
func (s *ContactService) dispatch(ctx context.Context, msg *model.ContactMessage) {
	if s.dispatcher == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("notification dispatcher panicked",
				"message_id", msg.ID,
				"panic", rec,
			)
			s.metrics.IncNotificationEnqueued("dropped")
		}
	}()

	if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
		s.logger.Warn("failed to dispatch notification",
			"message_id", msg.ID,
			"error", err,
		)
	}
}

func validateContactInput(in model.ContactMessageInput) error {
	switch {
	case isBlank(in.SenderName):
		return fmt.Errorf("%w: sender_name is required", ErrInvalidInput)
	case isBlank(in.SenderEmail):
		return fmt.Errorf("%w: sender_email is required", ErrInvalidInput)
	case isBlank(in.Subject):
		return fmt.Errorf("%w: subject is required", ErrInvalidInput)
	case isBlank(in.Content):
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	return nil
}
