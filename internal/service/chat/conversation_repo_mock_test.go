package chat

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

var _ conversationRepo = &conversationRepoMock{}

type conversationRepoMock struct {
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	GetOrCreateDirectFunc func(ctx context.Context, a uuid.UUID, b uuid.UUID) (*domain.Conversation, bool, error)
	IsParticipantFunc     func(ctx context.Context, conversationID uuid.UUID, userID uuid.UUID) (bool, error)
	ListForUserFunc       func(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)

	calls struct {
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		GetOrCreateDirect []struct {
			Ctx context.Context
			A   uuid.UUID
			B   uuid.UUID
		}
		IsParticipant []struct {
			Ctx            context.Context
			ConversationID uuid.UUID
			UserID         uuid.UUID
		}
		ListForUser []struct {
			Ctx    context.Context
			UserID uuid.UUID
		}
	}
	lockGetByID           sync.RWMutex
	lockGetOrCreateDirect sync.RWMutex
	lockIsParticipant     sync.RWMutex
	lockListForUser       sync.RWMutex
}

func (mock *conversationRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	if mock.GetByIDFunc == nil {
		panic("conversationRepoMock.GetByIDFunc: method is nil but conversationRepo.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{
		Ctx: ctx,
		ID:  id,
	}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *conversationRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *conversationRepoMock) GetOrCreateDirect(ctx context.Context, a uuid.UUID, b uuid.UUID) (*domain.Conversation, bool, error) {
	if mock.GetOrCreateDirectFunc == nil {
		panic("conversationRepoMock.GetOrCreateDirectFunc: method is nil but conversationRepo.GetOrCreateDirect was just called")
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

func (mock *conversationRepoMock) GetOrCreateDirectCalls() []struct {
	Ctx context.Context
	A   uuid.UUID
	B   uuid.UUID
} {
	mock.lockGetOrCreateDirect.RLock()
	calls := mock.calls.GetOrCreateDirect
	mock.lockGetOrCreateDirect.RUnlock()
	return calls
}

func (mock *conversationRepoMock) IsParticipant(ctx context.Context, conversationID uuid.UUID, userID uuid.UUID) (bool, error) {
	if mock.IsParticipantFunc == nil {
		panic("conversationRepoMock.IsParticipantFunc: method is nil but conversationRepo.IsParticipant was just called")
	}
	callInfo := struct {
		Ctx            context.Context
		ConversationID uuid.UUID
		UserID         uuid.UUID
	}{
		Ctx:            ctx,
		ConversationID: conversationID,
		UserID:         userID,
	}
	mock.lockIsParticipant.Lock()
	mock.calls.IsParticipant = append(mock.calls.IsParticipant, callInfo)
	mock.lockIsParticipant.Unlock()
	return mock.IsParticipantFunc(ctx, conversationID, userID)
}

func (mock *conversationRepoMock) IsParticipantCalls() []struct {
	Ctx            context.Context
	ConversationID uuid.UUID
	UserID         uuid.UUID
} {
	mock.lockIsParticipant.RLock()
	calls := mock.calls.IsParticipant
	mock.lockIsParticipant.RUnlock()
	return calls
}

func (mock *conversationRepoMock) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	if mock.ListForUserFunc == nil {
		panic("conversationRepoMock.ListForUserFunc: method is nil but conversationRepo.ListForUser was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
	}{
		Ctx:    ctx,
		UserID: userID,
	}
	mock.lockListForUser.Lock()
	mock.calls.ListForUser = append(mock.calls.ListForUser, callInfo)
	mock.lockListForUser.Unlock()
	return mock.ListForUserFunc(ctx, userID)
}

func (mock *conversationRepoMock) ListForUserCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
} {
	mock.lockListForUser.RLock()
	calls := mock.calls.ListForUser
	mock.lockListForUser.RUnlock()
	return calls
}
