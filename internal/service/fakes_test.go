package service

import (
	"context"
	"sync"

	"github.com/folio/folio/internal/model"
)

// memStore is an in-memory StatusStore and ContactStore.
type memStore struct {
	mu       sync.Mutex
	checks   []*model.StatusCheck
	messages []*model.ContactMessage
	err      error
}

func (s *memStore) InsertStatusCheck(ctx context.Context, sc *model.StatusCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.checks = append(s.checks, sc)
	return nil
}

func (s *memStore) ListStatusChecks(ctx context.Context, limit int) ([]*model.StatusCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if len(s.checks) < limit {
		limit = len(s.checks)
	}
	out := make([]*model.StatusCheck, limit)
	copy(out, s.checks[:limit])
	return out, nil
}

func (s *memStore) InsertContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

// nilListStore returns a nil slice from a successful list.
type nilListStore struct{ memStore }

func (s *nilListStore) ListStatusChecks(ctx context.Context, limit int) ([]*model.StatusCheck, error) {
	return nil, nil
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []*model.ContactMessage
	err   error
	panic bool
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, msg *model.ContactMessage) error {
	d.mu.Lock()
	d.calls = append(d.calls, msg)
	d.mu.Unlock()
	if d.panic {
		panic("dispatcher exploded")
	}
	return d.err
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}
