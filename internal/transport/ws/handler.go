// Package ws is the WebSocket gateway: it authenticates connections, writes
// the backlog snapshot, routes inbound actions to the services and fans live
// events out to connections.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/heartmarshall/soundrise-gateway/internal/config"
	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/service/chat"
	"github.com/heartmarshall/soundrise-gateway/internal/service/invitation"
	"github.com/heartmarshall/soundrise-gateway/pkg/ctxutil"
)

//go:generate moq -out token_verifier_mock_test.go -pkg ws . tokenVerifier
//go:generate moq -out invitation_service_mock_test.go -pkg ws . invitationService
//go:generate moq -out chat_service_mock_test.go -pkg ws . chatService
//go:generate moq -out notification_service_mock_test.go -pkg ws . notificationService

type tokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}

type invitationService interface {
	Send(ctx context.Context, input invitation.SendInput) (*domain.Invitation, error)
	Accept(ctx context.Context, input invitation.RespondInput) (*invitation.AcceptResult, error)
	Decline(ctx context.Context, input invitation.RespondInput) (*domain.Invitation, error)
	StatusForWork(ctx context.Context, workID uuid.UUID) ([]*domain.Invitation, error)
	PendingReceived(ctx context.Context, kind domain.InvitationKind) ([]domain.InvitationReceived, error)
}

type chatService interface {
	SendMessage(ctx context.Context, input chat.SendMessageInput) (*domain.Message, error)
	MarkSeen(ctx context.Context, input chat.MarkSeenInput) (*domain.Message, error)
	ListMessages(ctx context.Context, input chat.ListMessagesInput) ([]*domain.Message, error)
	ListConversations(ctx context.Context) ([]*domain.Conversation, error)
	Authorize(ctx context.Context, conversationID uuid.UUID) error
}

type notificationService interface {
	Unread(ctx context.Context) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
}

// Surface is one of the gateway endpoints. Each surface carries invitations
// of a single kind and accepts its own subset of actions.
type Surface struct {
	Name    string
	Kind    domain.InvitationKind
	actions []Action
}

var (
	// SurfaceCollaboration serves collaboration invites on works.
	SurfaceCollaboration = Surface{
		Name: "collaboration",
		Kind: domain.InvitationKindCollaboration,
		actions: []Action{
			ActionSendInvite, ActionAcceptInvite, ActionDeclineInvite, ActionGetInviteStatus,
			ActionMarkNotificationRead, ActionMarkAllRead,
		},
	}

	// SurfaceChat serves chat invites and messaging.
	SurfaceChat = Surface{
		Name: "chat",
		Kind: domain.InvitationKindChat,
		actions: []Action{
			ActionSendInvite, ActionAcceptInvite, ActionDeclineInvite,
			ActionSendMessage, ActionMarkSeen, ActionListMessages,
			ActionJoinConversation, ActionLeaveConversation, ActionListConversations,
			ActionMarkNotificationRead, ActionMarkAllRead,
		},
	}
)

func (s Surface) allows(a Action) bool {
	return slices.Contains(s.actions, a)
}

// Handler upgrades HTTP requests to gateway connections.
type Handler struct {
	log           *slog.Logger
	verifier      tokenVerifier
	registry      *Registry
	invitations   invitationService
	chat          chatService
	notifications notificationService
	cfg           config.GatewayConfig
	upgrader      websocket.Upgrader
}

// NewHandler creates a gateway Handler.
func NewHandler(
	logger *slog.Logger,
	verifier tokenVerifier,
	registry *Registry,
	invitations invitationService,
	chat chatService,
	notifications notificationService,
	cfg config.GatewayConfig,
) *Handler {
	h := &Handler{
		log:           logger.With("component", "gateway"),
		verifier:      verifier,
		registry:      registry,
		invitations:   invitations,
		chat:          chat,
		notifications: notifications,
		cfg:           cfg,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.Origins()),
	}
	return h
}

// Serve returns the http.Handler of a surface.
func (h *Handler) Serve(surface Surface) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, surface)
	})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, surface Surface) {
	ctx := r.Context()
	log := h.log.With(slog.String("surface", surface.Name))

	user, authErr := h.verifier.Verify(ctx, credential(r))

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		log.DebugContext(ctx, "upgrade failed", slog.String("error", err.Error()))
		return
	}

	if authErr != nil {
		log.InfoContext(ctx, "connection rejected",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", authErr.Error()),
		)
		h.reject(wsConn)
		return
	}

	conn := newConn(wsConn, user, log, h.cfg)
	ctx = ctxutil.WithUserID(ctx, user.ID)
	ctx = ctxutil.WithConnID(ctx, conn.ID())

	go conn.writePump()
	defer func() {
		if rec := recover(); rec != nil {
			conn.log.ErrorContext(ctx, "panic recovered in connection",
				slog.Any("error", rec),
				slog.String("stack", string(debug.Stack())),
			)
		}
		h.registry.Unregister(conn)
		conn.close()
		<-conn.stopped
		conn.log.InfoContext(ctx, "connection closed")
	}()

	if _, err := h.registry.Register(ctx, conn); err != nil {
		conn.log.ErrorContext(ctx, "register connection", slog.String("error", err.Error()))
		return
	}
	conn.log.InfoContext(ctx, "connection opened", slog.String("remote_addr", r.RemoteAddr))

	s := &session{h: h, conn: conn, surface: surface}
	s.writeSnapshot(context.WithoutCancel(ctx))
	conn.markReady()

	s.readLoop(ctx)
}

// reject tells an unauthenticated client why and closes with a policy
// violation. Both writes are best effort.
func (h *Handler) reject(wsConn *websocket.Conn) {
	defer wsConn.Close()

	deadline := time.Now().Add(h.cfg.WriteWait)
	_ = wsConn.SetWriteDeadline(deadline)
	_ = wsConn.WriteJSON(errorFrame{
		header: header{Type: frameError},
		Error:  "authentication required",
		Code:   codeUnauthorized,
	})
	_ = wsConn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"), deadline)
}

// credential reads the access token from the token query parameter or the
// Authorization header.
func credential(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// session is the per-connection state of the read side.
type session struct {
	h            *Handler
	conn         *Conn
	surface      Surface
	decodeErrors int
}

// writeSnapshot sends the unread backlog before any live event. A failed
// lookup is reported as an error frame and the connection stays open.
func (s *session) writeSnapshot(ctx context.Context) {
	notes, err := s.h.notifications.Unread(ctx)
	if err != nil {
		s.fail(ctx, "", "", err)
	} else {
		s.conn.reply(unreadNotificationsFrame{
			header:        header{Type: frameUnreadNotifications},
			Notifications: mapSlice(notes, toNotificationView),
		})
	}

	invites, err := s.h.invitations.PendingReceived(ctx, s.surface.Kind)
	if err != nil {
		s.fail(ctx, "", "", err)
		return
	}
	s.conn.reply(unreadInvitationsFrame{
		header:      header{Type: frameUnreadInvitations},
		Kind:        s.surface.Kind.String(),
		Invitations: mapSlice(invites, toReceivedInvitationView),
	})
}

func (s *session) readLoop(ctx context.Context) {
	ws := s.conn.ws
	ws.SetReadLimit(s.h.cfg.MaxMessageBytes)
	_ = ws.SetReadDeadline(time.Now().Add(s.h.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.h.cfg.PongWait))
	})

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				s.conn.log.WarnContext(ctx, "frame exceeds read limit")
			case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				s.conn.log.DebugContext(ctx, "read failed", slog.String("error", err.Error()))
			}
			return
		}
		if messageType != websocket.TextMessage {
			if !s.badFrame(ctx, "", "", errBinaryFrame) {
				return
			}
			continue
		}

		if !s.handle(ctx, data) {
			return
		}
	}
}
