package invitation

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

var _ conversationStarter = &conversationStarterMock{}

type conversationStarterMock struct {
	GetOrCreateDirectFunc func(ctx context.Context, a uuid.UUID, b uuid.UUID) (*domain.Conversation, error)

	calls struct {
		GetOrCreateDirect []struct {
			Ctx context.Context
			A   uuid.UUID
			B   uuid.UUID
		}
	}
	lockGetOrCreateDirect sync.RWMutex
}

func (mock *conversationStarterMock) GetOrCreateDirect(ctx context.Context, a uuid.UUID, b uuid.UUID) (*domain.Conversation, error) {
	if mock.GetOrCreateDirectFunc == nil {
		panic("conversationStarterMock.GetOrCreateDirectFunc: method is nil but conversationStarter.GetOrCreateDirect was just called")
	}
	callInfo := struct {
		Ctx context.Context
		A   uuid.UUID
		B   uuid.UUID
	}{
		Ctx: ctx,
		A:   a,
		B:   b,
	}
	mock.lockGetOrCreateDirect.Lock()
	mock.calls.GetOrCreateDirect = append(mock.calls.GetOrCreateDirect, callInfo)
	mock.lockGetOrCreateDirect.Unlock()
	return mock.GetOrCreateDirectFunc(ctx, a, b)
}

func (mock *conversationStarterMock) GetOrCreateDirectCalls() []struct {
	Ctx context.Context
	A   uuid.UUID
	B   uuid.UUID
} {
	mock.lockGetOrCreateDirect.RLock()
	calls := mock.calls.GetOrCreateDirect
	mock.lockGetOrCreateDirect.RUnlock()
	return calls
}
