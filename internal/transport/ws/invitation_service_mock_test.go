package ws

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/service/invitation"
)

var _ invitationService = &invitationServiceMock{}

type invitationServiceMock struct {
	AcceptFunc          func(ctx context.Context, input invitation.RespondInput) (*invitation.AcceptResult, error)
	DeclineFunc         func(ctx context.Context, input invitation.RespondInput) (*domain.Invitation, error)
	PendingReceivedFunc func(ctx context.Context, kind domain.InvitationKind) ([]domain.InvitationReceived, error)
	SendFunc            func(ctx context.Context, input invitation.SendInput) (*domain.Invitation, error)
	StatusForWorkFunc   func(ctx context.Context, workID uuid.UUID) ([]*domain.Invitation, error)

	calls struct {
		Accept []struct {
			Ctx   context.Context
			Input invitation.RespondInput
		}
		Decline []struct {
			Ctx   context.Context
			Input invitation.RespondInput
		}
		PendingReceived []struct {
			Ctx  context.Context
			Kind domain.InvitationKind
		}
		Send []struct {
			Ctx   context.Context
			Input invitation.SendInput
		}
		StatusForWork []struct {
			Ctx    context.Context
			WorkID uuid.UUID
		}
	}
	lockAccept          sync.RWMutex
	lockDecline         sync.RWMutex
	lockPendingReceived sync.RWMutex
	lockSend            sync.RWMutex
	lockStatusForWork   sync.RWMutex
}

func (mock *invitationServiceMock) Accept(ctx context.Context, input invitation.RespondInput) (*invitation.AcceptResult, error) {
	if mock.AcceptFunc == nil {
		panic("invitationServiceMock.AcceptFunc: method is nil but invitationService.Accept was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input invitation.RespondInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockAccept.Lock()
	mock.calls.Accept = append(mock.calls.Accept, callInfo)
	mock.lockAccept.Unlock()
	return mock.AcceptFunc(ctx, input)
}

func (mock *invitationServiceMock) AcceptCalls() []struct {
	Ctx   context.Context
	Input invitation.RespondInput
} {
	mock.lockAccept.RLock()
	calls := mock.calls.Accept
	mock.lockAccept.RUnlock()
	return calls
}

func (mock *invitationServiceMock) Decline(ctx context.Context, input invitation.RespondInput) (*domain.Invitation, error) {
	if mock.DeclineFunc == nil {
		panic("invitationServiceMock.DeclineFunc: method is nil but invitationService.Decline was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input invitation.RespondInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockDecline.Lock()
	mock.calls.Decline = append(mock.calls.Decline, callInfo)
	mock.lockDecline.Unlock()
	return mock.DeclineFunc(ctx, input)
}

func (mock *invitationServiceMock) DeclineCalls() []struct {
	Ctx   context.Context
	Input invitation.RespondInput
} {
	mock.lockDecline.RLock()
	calls := mock.calls.Decline
	mock.lockDecline.RUnlock()
	return calls
}

func (mock *invitationServiceMock) PendingReceived(ctx context.Context, kind domain.InvitationKind) ([]domain.InvitationReceived, error) {
	if mock.PendingReceivedFunc == nil {
		panic("invitationServiceMock.PendingReceivedFunc: method is nil but invitationService.PendingReceived was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Kind domain.InvitationKind
	}{
		Ctx:  ctx,
		Kind: kind,
	}
	mock.lockPendingReceived.Lock()
	mock.calls.PendingReceived = append(mock.calls.PendingReceived, callInfo)
	mock.lockPendingReceived.Unlock()
	return mock.PendingReceivedFunc(ctx, kind)
}

func (mock *invitationServiceMock) PendingReceivedCalls() []struct {
	Ctx  context.Context
	Kind domain.InvitationKind
} {
	mock.lockPendingReceived.RLock()
	calls := mock.calls.PendingReceived
	mock.lockPendingReceived.RUnlock()
	return calls
}

func (mock *invitationServiceMock) Send(ctx context.Context, input invitation.SendInput) (*domain.Invitation, error) {
	if mock.SendFunc == nil {
		panic("invitationServiceMock.SendFunc: method is nil but invitationService.Send was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input invitation.SendInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockSend.Lock()
	mock.calls.Send = append(mock.calls.Send, callInfo)
	mock.lockSend.Unlock()
	return mock.SendFunc(ctx, input)
}

func (mock *invitationServiceMock) SendCalls() []struct {
	Ctx   context.Context
	Input invitation.SendInput
} {
	mock.lockSend.RLock()
	calls := mock.calls.Send
	mock.lockSend.RUnlock()
	return calls
}

func (mock *invitationServiceMock) StatusForWork(ctx context.Context, workID uuid.UUID) ([]*domain.Invitation, error) {
	if mock.StatusForWorkFunc == nil {
		panic("invitationServiceMock.StatusForWorkFunc: method is nil but invitationService.StatusForWork was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		WorkID uuid.UUID
	}{
		Ctx:    ctx,
		WorkID: workID,
	}
	mock.lockStatusForWork.Lock()
	mock.calls.StatusForWork = append(mock.calls.StatusForWork, callInfo)
	mock.lockStatusForWork.Unlock()
	return mock.StatusForWorkFunc(ctx, workID)
}

func (mock *invitationServiceMock) StatusForWorkCalls() []struct {
	Ctx    context.Context
	WorkID uuid.UUID
} {
	mock.lockStatusForWork.RLock()
	calls := mock.calls.StatusForWork
	mock.lockStatusForWork.RUnlock()
	return calls
}
