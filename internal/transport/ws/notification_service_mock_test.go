package ws

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

var _ notificationService = &notificationServiceMock{}

type notificationServiceMock struct {
	MarkAllReadFunc func(ctx context.Context) (int64, error)
	MarkReadFunc    func(ctx context.Context, id uuid.UUID) error
	UnreadFunc      func(ctx context.Context) ([]*domain.Notification, error)

	calls struct {
		MarkAllRead []struct {
			Ctx context.Context
		}
		MarkRead []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		Unread []struct {
			Ctx context.Context
		}
	}
	lockMarkAllRead sync.RWMutex
	lockMarkRead    sync.RWMutex
	lockUnread      sync.RWMutex
}

func (mock *notificationServiceMock) MarkAllRead(ctx context.Context) (int64, error) {
	if mock.MarkAllReadFunc == nil {
		panic("notificationServiceMock.MarkAllReadFunc: method is nil but notificationService.MarkAllRead was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockMarkAllRead.Lock()
	mock.calls.MarkAllRead = append(mock.calls.MarkAllRead, callInfo)
	mock.lockMarkAllRead.Unlock()
	return mock.MarkAllReadFunc(ctx)
}

func (mock *notificationServiceMock) MarkAllReadCalls() []struct {
	Ctx context.Context
} {
	mock.lockMarkAllRead.RLock()
	calls := mock.calls.MarkAllRead
	mock.lockMarkAllRead.RUnlock()
	return calls
}

func (mock *notificationServiceMock) MarkRead(ctx context.Context, id uuid.UUID) error {
	if mock.MarkReadFunc == nil {
		panic("notificationServiceMock.MarkReadFunc: method is nil but notificationService.MarkRead was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{
		Ctx: ctx,
		ID:  id,
	}
	mock.lockMarkRead.Lock()
	mock.calls.MarkRead = append(mock.calls.MarkRead, callInfo)
	mock.lockMarkRead.Unlock()
	return mock.MarkReadFunc(ctx, id)
}

func (mock *notificationServiceMock) MarkReadCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockMarkRead.RLock()
	calls := mock.calls.MarkRead
	mock.lockMarkRead.RUnlock()
	return calls
}

func (mock *notificationServiceMock) Unread(ctx context.Context) ([]*domain.Notification, error) {
	if mock.UnreadFunc == nil {
		panic("notificationServiceMock.UnreadFunc: method is nil but notificationService.Unread was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockUnread.Lock()
	mock.calls.Unread = append(mock.calls.Unread, callInfo)
	mock.lockUnread.Unlock()
	return mock.UnreadFunc(ctx)
}

func (mock *notificationServiceMock) UnreadCalls() []struct {
	Ctx context.Context
} {
	mock.lockUnread.RLock()
	calls := mock.calls.Unread
	mock.lockUnread.RUnlock()
	return calls
}
