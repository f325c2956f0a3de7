package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/service/chat"
	"github.com/heartmarshall/soundrise-gateway/internal/service/invitation"
	"github.com/heartmarshall/soundrise-gateway/pkg/ctxutil"
)

// Error codes carried by error frames.
const (
	codeBadRequest      = "bad_request"
	codeUnknownAction   = "unknown_action"
	codeUnauthorized    = "unauthorized"
	codeForbidden       = "forbidden"
	codeNotOwner        = "not_owner"
	codeSelfInvite      = "self_invite_not_allowed"
	codeSelfMessage     = "self_message_not_allowed"
	codeInvalidState    = "invalid_state"
	codeDuplicateInvite = "duplicate_invite"
	codeNotFound        = "not_found"
	codeValidation      = "validation"
	codeInternal        = "internal"
)

var (
	errBadRequest    = errors.New("bad request")
	errUnknownAction = errors.New("unknown action")
	errBinaryFrame   = fmt.Errorf("%w: binary frames are not supported", errBadRequest)
)

// handle processes one inbound frame. It returns false when the connection
// should be closed.
func (s *session) handle(ctx context.Context, data []byte) bool {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return s.badFrame(ctx, "", "", fmt.Errorf("%w: invalid JSON", errBadRequest))
	}
	s.decodeErrors = 0

	action, known := env.Action.normalize()
	if !known || !s.surface.allows(action) {
		s.fail(ctx, env.Action, env.RequestID, fmt.Errorf("%w %q", errUnknownAction, env.Action))
		return true
	}

	// A disconnect must not abort a transition halfway.
	callCtx := ctxutil.WithRequestID(context.WithoutCancel(ctx), env.RequestID)

	success, result, err := s.dispatch(callCtx, action, data)
	if err != nil {
		s.fail(callCtx, action, env.RequestID, err)
		return true
	}

	s.conn.reply(ackFrame{
		header:  header{Type: frameAck, RequestID: env.RequestID},
		Action:  action,
		Success: success,
		Data:    result,
	})
	return true
}

// badFrame reports an undecodable frame. With gateway.max_decode_errors set,
// that many consecutive bad frames close the connection.
func (s *session) badFrame(ctx context.Context, action Action, requestID string, err error) bool {
	s.fail(ctx, action, requestID, err)
	s.decodeErrors++
	if limit := s.h.cfg.MaxDecodeErrors; limit > 0 && s.decodeErrors >= limit {
		s.conn.log.WarnContext(ctx, "too many malformed frames, closing", slog.Int("count", s.decodeErrors))
		return false
	}
	return true
}

func (s *session) dispatch(ctx context.Context, action Action, data []byte) (string, any, error) {
	switch action {
	case ActionSendInvite:
		var req sendInviteRequest
		if err := decode(data, &req); err != nil {
			return "", nil, err
		}
		inv, err := s.h.invitations.Send(ctx, invitation.SendInput{
			Kind:       s.surface.Kind,
			ReceiverID: req.ReceiverID,
			WorkID:     req.WorkID,
			Message:    req.Message,
		})
		if err != nil {
			return "", nil, err
		}
		return "Invitation sent", toInvitationView(inv), nil

	case ActionAcceptInvite:
		var req respondInviteRequest
		if err := decode(data, &req); err != nil {
			return "", nil, err
		}
		res, err := s.h.invitations.Accept(ctx, invitation.RespondInput{InvitationID: req.InvitationID})
		if err != nil {
			return "", nil, err
		}
		return "Invitation accepted", struct {
			Invitation     invitationView `json:"invitation"`
			ConversationID any            `json:"conversation_id,omitempty"`
		}{toInvitationView(res.Invitation), optional(res.ConversationID)}, nil

	case ActionDeclineInvite:
		var req respondInviteRequest
		if err := decode(data, &req); err != nil {
			return "", nil, err
		}
		inv, err := s.h.invitations.Decline(ctx, invitation.RespondInput{InvitationID: req.InvitationID})
		if err != nil {
			return "", nil, err
		}
		return "Invitation declined", toInvitationView(inv), nil

	case ActionGetInviteStatus:
		var req inviteStatusRequest
		if err := decode(data, &req); err != nil {
			return "", nil, err
		}
		list, err := s.h.invitations.StatusForWork(ctx, req.WorkID)
		if err != nil {
			return "", nil, err
		}
		return "Invitation status", mapSlice(list, toInvitationView), nil

	case ActionSendMessage:
		var req sendMessageRequest
		if err := decode(data, &req); err != nil {
			return "", nil, err
		}
		msg, err := s.h.chat.SendMessage(ctx, chat.SendMessageInput{
			ConversationID: req.ConversationID,
			ReceiverID:     req.ReceiverID,
			Content:        req.Content,
		})
		if err != nil {
			return "", nil, err
		}
		return "Message sent", toMessageView(msg), nil

	case ActionMarkSeen:
		var req markSeenRequest
		if err := decode(data, &req); err != nil {
			return "", nil, err
		}
		msg, err := s.h.chat.MarkSeen(ctx, chat.MarkSeenInput{MessageID: req.MessageID})
		if err != nil {
			return "", nil, err
		}
		return "Message marked as seen", toMessageView(msg), nil

	case ActionListMessages:
		var req listMessagesRequest
		if err := decode(data, &req); err != nil {
			return "", nil, err
		}
		list, err := s.h.chat.ListMessages(ctx, chat.ListMessagesInput{
			ConversationID: req.ConversationID,
			Before:         req.Before,
			Limit:          req.Limit,
		})
		if err != nil {
			return "", nil, err
		}
		return "Messages", mapSlice(list, toMessageView), nil

	case ActionJoinConversation:
		var req conversationRequest
		if err := decode(data, &req); err != nil {
			return "", nil, err
		}
		if err := s.h.chat.Authorize(ctx, req.ConversationID); err != nil {
			return "", nil, err
		}
		if err := s.h.registry.Subscribe(ctx, s.conn, domain.ConversationChannel(req.ConversationID)); err != nil {
			return "", nil, err
		}
		return "Joined conversation", nil, nil

	case ActionLeaveConversation:
		var req conversationRequest
		if err := decode(data, &req); err != nil {
			return "", nil, err
		}
		s.h.registry.Unsubscribe(s.conn, domain.ConversationChannel(req.ConversationID))
		return "Left conversation", nil, nil

	case ActionListConversations:
		list, err := s.h.chat.ListConversations(ctx)
		if err != nil {
			return "", nil, err
		}
		return "Conversations", mapSlice(list, toConversationView), nil

	case ActionMarkNotificationRead:
		var req notificationReadRequest
		if err := decode(data, &req); err != nil {
			return "", nil, err
		}
		if err := s.h.notifications.MarkRead(ctx, req.NotificationID); err != nil {
			return "", nil, err
		}
		return "Notification marked as read", nil, nil

	case ActionMarkAllRead:
		n, err := s.h.notifications.MarkAllRead(ctx)
		if err != nil {
			return "", nil, err
		}
		return "Notifications marked as read", struct {
			Count int64 `json:"count"`
		}{n}, nil
	}

	return "", nil, fmt.Errorf("%w %q", errUnknownAction, action)
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, err.Error())
	}
	return nil
}

// optional keeps a nil pointer out of an omitempty any field.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// fail writes an error frame for err and logs it by category.
func (s *session) fail(ctx context.Context, action Action, requestID string, err error) {
	code := errorCode(err)
	frame := errorFrame{
		header: header{Type: frameError, RequestID: requestID},
		Error:  err.Error(),
		Code:   code,
		Action: action,
	}

	attrs := []any{
		slog.String("action", string(action)),
		slog.String("code", code),
		slog.String("request_id", requestID),
		slog.String("error", err.Error()),
	}
	switch code {
	case codeInternal:
		s.conn.log.ErrorContext(ctx, "action failed", attrs...)
		frame.Error = "internal error"
	case codeInvalidState, codeDuplicateInvite:
		s.conn.log.DebugContext(ctx, "action conflict", attrs...)
	default:
		s.conn.log.DebugContext(ctx, "action rejected", attrs...)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		frame.Fields = make([]fieldErrorView, 0, len(ve.Errors))
		for _, fe := range ve.Errors {
			frame.Fields = append(frame.Fields, fieldErrorView{Field: fe.Field, Message: fe.Message})
		}
	}

	s.conn.reply(frame)
}

// errorCode maps an error onto the code of its category. The more specific
// sentinels are checked before the generic ones they may wrap.
func errorCode(err error) string {
	switch {
	case errors.Is(err, errBadRequest):
		return codeBadRequest
	case errors.Is(err, errUnknownAction):
		return codeUnknownAction
	case errors.Is(err, domain.ErrValidation):
		return codeValidation
	case errors.Is(err, domain.ErrNotOwner):
		return codeNotOwner
	case errors.Is(err, domain.ErrSelfInviteNotAllowed):
		return codeSelfInvite
	case errors.Is(err, domain.ErrSelfMessageNotAllowed):
		return codeSelfMessage
	case errors.Is(err, domain.ErrDuplicateInvite):
		return codeDuplicateInvite
	case errors.Is(err, domain.ErrInvalidState):
		return codeInvalidState
	case errors.Is(err, domain.ErrForbidden):
		return codeForbidden
	case errors.Is(err, domain.ErrNotFound):
		return codeNotFound
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidCredential),
		errors.Is(err, domain.ErrUnknownSubject):
		return codeUnauthorized
	default:
		return codeInternal
	}
}
