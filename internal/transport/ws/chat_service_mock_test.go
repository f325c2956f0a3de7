package ws

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/service/chat"
)

var _ chatService = &chatServiceMock{}

type chatServiceMock struct {
	AuthorizeFunc         func(ctx context.Context, conversationID uuid.UUID) error
	ListConversationsFunc func(ctx context.Context) ([]*domain.Conversation, error)
	ListMessagesFunc      func(ctx context.Context, input chat.ListMessagesInput) ([]*domain.Message, error)
	MarkSeenFunc          func(ctx context.Context, input chat.MarkSeenInput) (*domain.Message, error)
	SendMessageFunc       func(ctx context.Context, input chat.SendMessageInput) (*domain.Message, error)

	calls struct {
		Authorize []struct {
			Ctx            context.Context
			ConversationID uuid.UUID
		}
		ListConversations []struct {
			Ctx context.Context
		}
		ListMessages []struct {
			Ctx   context.Context
			Input chat.ListMessagesInput
		}
		MarkSeen []struct {
			Ctx   context.Context
			Input chat.MarkSeenInput
		}
		SendMessage []struct {
			Ctx   context.Context
			Input chat.SendMessageInput
		}
	}
	lockAuthorize         sync.RWMutex
	lockListConversations sync.RWMutex
	lockListMessages      sync.RWMutex
	lockMarkSeen          sync.RWMutex
	lockSendMessage       sync.RWMutex
}

func (mock *chatServiceMock) Authorize(ctx context.Context, conversationID uuid.UUID) error {
	if mock.AuthorizeFunc == nil {
		panic("chatServiceMock.AuthorizeFunc: method is nil but chatService.Authorize was just called")
	}
	callInfo := struct {
		Ctx            context.Context
		ConversationID uuid.UUID
	}{
		Ctx:            ctx,
		ConversationID: conversationID,
	}
	mock.lockAuthorize.Lock()
	mock.calls.Authorize = append(mock.calls.Authorize, callInfo)
	mock.lockAuthorize.Unlock()
	return mock.AuthorizeFunc(ctx, conversationID)
}

func (mock *chatServiceMock) AuthorizeCalls() []struct {
	Ctx            context.Context
	ConversationID uuid.UUID
} {
	mock.lockAuthorize.RLock()
	calls := mock.calls.Authorize
	mock.lockAuthorize.RUnlock()
	return calls
}

func (mock *chatServiceMock) ListConversations(ctx context.Context) ([]*domain.Conversation, error) {
	if mock.ListConversationsFunc == nil {
		panic("chatServiceMock.ListConversationsFunc: method is nil but chatService.ListConversations was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockListConversations.Lock()
	mock.calls.ListConversations = append(mock.calls.ListConversations, callInfo)
	mock.lockListConversations.Unlock()
	return mock.ListConversationsFunc(ctx)
}

func (mock *chatServiceMock) ListConversationsCalls() []struct {
	Ctx context.Context
} {
	mock.lockListConversations.RLock()
	calls := mock.calls.ListConversations
	mock.lockListConversations.RUnlock()
	return calls
}

func (mock *chatServiceMock) ListMessages(ctx context.Context, input chat.ListMessagesInput) ([]*domain.Message, error) {
	if mock.ListMessagesFunc == nil {
		panic("chatServiceMock.ListMessagesFunc: method is nil but chatService.ListMessages was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input chat.ListMessagesInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockListMessages.Lock()
	mock.calls.ListMessages = append(mock.calls.ListMessages, callInfo)
	mock.lockListMessages.Unlock()
	return mock.ListMessagesFunc(ctx, input)
}

func (mock *chatServiceMock) ListMessagesCalls() []struct {
	Ctx   context.Context
	Input chat.ListMessagesInput
} {
	mock.lockListMessages.RLock()
	calls := mock.calls.ListMessages
	mock.lockListMessages.RUnlock()
	return calls
}

func (mock *chatServiceMock) MarkSeen(ctx context.Context, input chat.MarkSeenInput) (*domain.Message, error) {
	if mock.MarkSeenFunc == nil {
		panic("chatServiceMock.MarkSeenFunc: method is nil but chatService.MarkSeen was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input chat.MarkSeenInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockMarkSeen.Lock()
	mock.calls.MarkSeen = append(mock.calls.MarkSeen, callInfo)
	mock.lockMarkSeen.Unlock()
	return mock.MarkSeenFunc(ctx, input)
}

func (mock *chatServiceMock) MarkSeenCalls() []struct {
	Ctx   context.Context
	Input chat.MarkSeenInput
} {
	mock.lockMarkSeen.RLock()
	calls := mock.calls.MarkSeen
	mock.lockMarkSeen.RUnlock()
	return calls
}

func (mock *chatServiceMock) SendMessage(ctx context.Context, input chat.SendMessageInput) (*domain.Message, error) {
	if mock.SendMessageFunc == nil {
		panic("chatServiceMock.SendMessageFunc: method is nil but chatService.SendMessage was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input chat.SendMessageInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockSendMessage.Lock()
	mock.calls.SendMessage = append(mock.calls.SendMessage, callInfo)
	mock.lockSendMessage.Unlock()
	return mock.SendMessageFunc(ctx, input)
}

func (mock *chatServiceMock) SendMessageCalls() []struct {
	Ctx   context.Context
	Input chat.SendMessageInput
} {
	mock.lockSendMessage.RLock()
	calls := mock.calls.SendMessage
	mock.lockSendMessage.RUnlock()
	return calls
}
