package chat

import (
	"context"
	"sync"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

var _ eventPublisher = &eventPublisherMock{}

type eventPublisherMock struct {
	PublishFunc func(ctx context.Context, event domain.Event, channels ...domain.Channel) error

	calls struct {
		Publish []struct {
			Ctx      context.Context
			Event    domain.Event
			Channels []domain.Channel
		}
	}
	lockPublish sync.RWMutex
}

func (mock *eventPublisherMock) Publish(ctx context.Context, event domain.Event, channels ...domain.Channel) error {
	if mock.PublishFunc == nil {
		panic("eventPublisherMock.PublishFunc: method is nil but eventPublisher.Publish was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		Event    domain.Event
		Channels []domain.Channel
	}{
		Ctx:      ctx,
		Event:    event,
		Channels: channels,
	}
	mock.lockPublish.Lock()
	mock.calls.Publish = append(mock.calls.Publish, callInfo)
	mock.lockPublish.Unlock()
	return mock.PublishFunc(ctx, event, channels...)
}

func (mock *eventPublisherMock) PublishCalls() []struct {
	Ctx      context.Context
	Event    domain.Event
	Channels []domain.Channel
} {
	mock.lockPublish.RLock()
	calls := mock.calls.Publish
	mock.lockPublish.RUnlock()
	return calls
}
