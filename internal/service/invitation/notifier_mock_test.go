package invitation

import (
	"context"
	"sync"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/service/notification"
)

var _ notifier = &notifierMock{}

type notifierMock struct {
	DeliverFunc func(ctx context.Context, n *domain.Notification)
	RecordFunc  func(ctx context.Context, input notification.NotifyInput) (*domain.Notification, error)

	calls struct {
		Deliver []struct {
			Ctx context.Context
			N   *domain.Notification
		}
		Record []struct {
			Ctx   context.Context
			Input notification.NotifyInput
		}
	}
	lockDeliver sync.RWMutex
	lockRecord  sync.RWMutex
}

func (mock *notifierMock) Deliver(ctx context.Context, n *domain.Notification) {
	if mock.DeliverFunc == nil {
		panic("notifierMock.DeliverFunc: method is nil but notifier.Deliver was just called")
	}
	callInfo := struct {
		Ctx context.Context
		N   *domain.Notification
	}{
		Ctx: ctx,
		N:   n,
	}
	mock.lockDeliver.Lock()
	mock.calls.Deliver = append(mock.calls.Deliver, callInfo)
	mock.lockDeliver.Unlock()
	mock.DeliverFunc(ctx, n)
}

func (mock *notifierMock) DeliverCalls() []struct {
	Ctx context.Context
	N   *domain.Notification
} {
	mock.lockDeliver.RLock()
	calls := mock.calls.Deliver
	mock.lockDeliver.RUnlock()
	return calls
}

func (mock *notifierMock) Record(ctx context.Context, input notification.NotifyInput) (*domain.Notification, error) {
	if mock.RecordFunc == nil {
		panic("notifierMock.RecordFunc: method is nil but notifier.Record was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input notification.NotifyInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockRecord.Lock()
	mock.calls.Record = append(mock.calls.Record, callInfo)
	mock.lockRecord.Unlock()
	return mock.RecordFunc(ctx, input)
}

func (mock *notifierMock) RecordCalls() []struct {
	Ctx   context.Context
	Input notification.NotifyInput
} {
	mock.lockRecord.RLock()
	calls := mock.calls.Record
	mock.lockRecord.RUnlock()
	return calls
}
