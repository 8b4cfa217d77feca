package services

import (
	"context"
	"fmt"
	"time"

	"dating-core/internal/dto"
	"dating-core/internal/entities"
	"dating-core/internal/repositories"
	apperrors "dating-core/pkg/errors"
	"dating-core/pkg/eventqueue"
	"dating-core/pkg/idempotency"
	"dating-core/pkg/utils"
	wsock "dating-core/pkg/websocket"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const defaultMessageLimit = 30
const maxMessageLimit = 100
const defaultConversationLimit = 20

type ChatServiceInterface interface {
	ListConversations(ctx context.Context, userID int64, q *dto.ConversationListQuery) (*dto.ConversationListDTO, error)
	ListMessages(ctx context.Context, userID int64, conversationID int64, q *dto.MessageHistoryQuery) (*dto.MessageListDTO, error)
	SendMessageHTTP(ctx context.Context, senderID int64, in *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	MarkRead(ctx context.Context, userID int64, messageID int64) error
	Block(ctx context.Context, userID int64, conversationID int64) error
	Report(ctx context.Context, userID int64, conversationID int64, in *dto.ReportConversationRequest) error
}

// ChatService is both the HTTP-facing service and the wsock.Handler
// implementation for the chat websocket hub (spec.md §4.5).
type ChatService struct {
	conversations repositories.ConversationRepositoryInterface
	messages      repositories.MessageRepositoryInterface
	readCursors   repositories.ReadCursorRepositoryInterface
	users         repositories.UserRepositoryInterface
	profiles      repositories.ProfileRepositoryInterface
	blocks        repositories.BlockRepositoryInterface
	reports       repositories.ReportRepositoryInterface
	tx            repositories.TxManagerInterface
	hub           *wsock.Hub
	events        *eventqueue.Queue
	idempotency   *idempotency.Cache
	logger        *zap.Logger
}

func NewChatService(
	conversations repositories.ConversationRepositoryInterface,
	messages repositories.MessageRepositoryInterface,
	readCursors repositories.ReadCursorRepositoryInterface,
	users repositories.UserRepositoryInterface,
	profiles repositories.ProfileRepositoryInterface,
	blocks repositories.BlockRepositoryInterface,
	reports repositories.ReportRepositoryInterface,
	tx repositories.TxManagerInterface,
	hub *wsock.Hub,
	events *eventqueue.Queue,
	idemCache *idempotency.Cache,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations, messages: messages, readCursors: readCursors,
		users: users, profiles: profiles, blocks: blocks, reports: reports,
		tx: tx, hub: hub, events: events, idempotency: idemCache, logger: logger,
	}
}

func (s *ChatService) ListConversations(ctx context.Context, userID int64, q *dto.ConversationListQuery) (*dto.ConversationListDTO, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	if limit > maxCandidateLimit {
		limit = maxCandidateLimit
	}

	var afterID *int64
	if q.Cursor != "" {
		c, err := utils.DecodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		afterID = utils.Ptr(c.UserID)
	}

	rows, err := s.conversations.ListForUser(ctx, userID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	out := &dto.ConversationListDTO{Conversations: make([]dto.ConversationDTO, 0, len(rows))}
	for _, c := range rows {
		counterpartyID := c.User1ID
		if counterpartyID == userID {
			counterpartyID = c.User2ID
		}
		profile, err := s.profiles.FindByUserID(ctx, counterpartyID)
		if err != nil {
			continue
		}
		out.Conversations = append(out.Conversations, dto.ConversationDTO{
			ID:           c.ID,
			Counterparty: *toProfileDTO(profile, nil),
			UnreadCount:  c.UnreadCount,
			BlockedBy:    c.BlockedBy,
			UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
		})
	}
	if len(rows) == limit {
		out.NextCursor = utils.EncodeCursor(0, rows[len(rows)-1].ID)
	}
	return out, nil
}

func (s *ChatService) ListMessages(ctx context.Context, userID int64, conversationID int64, q *dto.MessageHistoryQuery) (*dto.MessageListDTO, error) {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.User1ID != userID && conv.User2ID != userID {
		return nil, apperrors.ErrForbidden
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	rows, err := s.messages.ListBefore(ctx, conversationID, q.Before, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	// rows are created_at DESC, id DESC; reverse for chronological display.
	out := &dto.MessageListDTO{Messages: make([]dto.MessageDTO, len(rows))}
	for i, m := range rows {
		out.Messages[len(rows)-1-i] = toMessageDTO(&m)
	}
	return out, nil
}

func toMessageDTO(m *entities.Message) dto.MessageDTO {
	d := dto.MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		ContentType:    string(m.ContentType),
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
	if m.ReadAt != nil {
		d.ReadAt = m.ReadAt.Format(time.RFC3339)
	}
	return d
}

// authorizeSend implements spec.md §4.5's per-send authorization: caller
// must be a participant, the conversation must not be blocked, and the
// recipient's allow_messages_from must permit (matches-only conversations
// pass automatically since GetOrCreate is only invoked after a match in
// this design; anyone-conversations are opt-in per recipient profile).
func (s *ChatService) authorizeSend(ctx context.Context, conv *entities.Conversation, senderID int64) (recipientID int64, err error) {
	if conv.User1ID != senderID && conv.User2ID != senderID {
		return 0, apperrors.ErrForbidden
	}
	if conv.BlockedBy != nil {
		return 0, apperrors.ErrForbidden
	}

	recipientID = conv.User1ID
	if recipientID == senderID {
		recipientID = conv.User2ID
	}

	recipientProfile, err := s.profiles.FindByUserID(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	if recipientProfile.AllowMessagesFrom == entities.AllowMessagesFromAnyone {
		return recipientID, nil
	}
	// matches-only: conversation already exists for this pair, which in
	// this system only happens via a Match or an explicit prior opt-in,
	// so existence of the conversation itself satisfies the check.
	return recipientID, nil
}

func (s *ChatService) SendMessageHTTP(ctx context.Context, senderID int64, in *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	conv, err := s.conversations.FindByID(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}
	recipientID, err := s.authorizeSend(ctx, conv, senderID)
	if err != nil {
		return nil, err
	}

	contentType := entities.MessageContentText
	if in.ContentType != "" {
		contentType = entities.MessageContentType(in.ContentType)
	}

	created, err := s.persistMessage(ctx, conv.ID, senderID, in.Content, contentType)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	s.fanOutMessage(ctx, conv.ID, senderID, recipientID, created, nil)

	return &dto.SendMessageResponse{MessageID: created.ID, SentAt: created.CreatedAt.Format(time.RFC3339)}, nil
}

// persistMessage runs the insert + conversation touch in a single
// transaction (spec.md §4.5 "each send is a single transaction").
func (s *ChatService) persistMessage(ctx context.Context, conversationID, senderID int64, content string, contentType entities.MessageContentType) (*entities.Message, error) {
	var created *entities.Message
	err := s.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		txMessages := repositories.NewMessageRepository(tx)
		txConversations := repositories.NewConversationRepository(tx)

		msg, err := txMessages.Create(ctx, &entities.Message{
			ConversationID: conversationID,
			SenderID:       senderID,
			Content:        content,
			ContentType:    contentType,
		})
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		if err := txConversations.TouchUpdatedAt(ctx, conversationID); err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		created = msg
		return nil
	})
	return created, err
}

// fanOutMessage runs after commit: enqueues the notification event and
// pushes message.created to every live session of the recipient and every
// *other* session of the sender (spec.md §4.5 fan-out contract). origin is
// the WS client the send arrived on, if any; it is excluded from the
// sender's own fan-out so the sender's originating session doesn't see its
// own message echoed back. origin is nil for HTTP-originated sends, which
// have no WS session to exclude.
func (s *ChatService) fanOutMessage(ctx context.Context, conversationID, senderID, recipientID int64, msg *entities.Message, origin *wsock.Client) {
	if s.events != nil {
		recipientUser, err := s.users.FindByID(ctx, recipientID)
		senderProfile, profileErr := s.profiles.FindByUserID(ctx, senderID)
		if err == nil {
			event := eventqueue.ChatMessageSent{
				ConversationID:      conversationID,
				MessageID:           msg.ID,
				RecipientUserID:     recipientID,
				RecipientTelegramID: recipientUser.TelegramID,
				Preview:             preview(msg.Content),
			}
			if profileErr == nil {
				event.SenderDisplayName = senderProfile.Name
			}
			if err := s.events.Publish(ctx, eventqueue.SubjectChatMessageSent, event); err != nil {
				s.logger.Warn("publish chat.message.sent failed", zap.Error(err))
			}
		}
	}

	if s.hub == nil {
		return
	}
	frame, err := wsock.EncodeMessageCreated(conversationID, toMessageDTO(msg))
	if err != nil {
		s.logger.Error("encode message.created failed", zap.Error(err))
		return
	}
	s.hub.Send(recipientID, frame)
	s.hub.SendExcept(senderID, frame, origin)
}

func preview(content string) string {
	const maxLen = 80
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen]
}

func (s *ChatService) MarkRead(ctx context.Context, userID int64, messageID int64) error {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	conv, err := s.conversations.FindByID(ctx, msg.ConversationID)
	if err != nil {
		return err
	}
	if conv.User1ID != userID && conv.User2ID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.readCursors.AdvanceTo(ctx, conv.ID, userID, messageID); err != nil {
		return fmt.Errorf("advance read cursor: %w", err)
	}
	if err := s.messages.MarkReadUpTo(ctx, conv.ID, messageID); err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}

	if s.hub != nil {
		otherUserID := conv.User1ID
		if otherUserID == userID {
			otherUserID = conv.User2ID
		}
		frame, err := wsock.EncodeMessageRead(conv.ID, userID, messageID)
		if err == nil {
			s.hub.Send(otherUserID, frame)
		}
	}
	return nil
}

func (s *ChatService) Block(ctx context.Context, userID int64, conversationID int64) error {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.User1ID != userID && conv.User2ID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.conversations.SetBlockedBy(ctx, conversationID, userID); err != nil {
		return fmt.Errorf("block conversation: %w", err)
	}

	other := conv.User1ID
	if other == userID {
		other = conv.User2ID
	}
	if err := s.blocks.Create(ctx, userID, other); err != nil {
		s.logger.Warn("create block record failed", zap.Error(err))
	}

	if s.hub != nil {
		frame, err := wsock.EncodeConversationBlocked(conversationID, userID)
		if err == nil {
			s.hub.Send(other, frame)
		}
	}
	return nil
}

func (s *ChatService) Report(ctx context.Context, userID int64, conversationID int64, in *dto.ReportConversationRequest) error {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.User1ID != userID && conv.User2ID != userID {
		return apperrors.ErrForbidden
	}

	target := conv.User1ID
	if target == userID {
		target = conv.User2ID
	}

	_, err = s.reports.Create(ctx, &entities.Report{
		ReporterID:     userID,
		TargetID:       target,
		ConversationID: utils.Ptr(conversationID),
		Category:       in.Category,
		Reason:         in.Reason,
	})
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// --- wsock.Handler ---

// chatSendScope namespaces message.send idempotency keys away from every
// other cache user sharing the same Redis instance.
const chatSendScope = "chat.ws.send_message"

func (s *ChatService) HandleSend(c *wsock.Client, in wsock.MessageSendIn) {
	ctx, cancel := utils.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	var dedupeKey string
	if in.IdempotencyKey != nil && *in.IdempotencyKey != "" {
		dedupeKey = fmt.Sprintf("%d:%s", c.UserID, *in.IdempotencyKey)
		if rec, err := s.idempotency.Lookup(ctx, chatSendScope, dedupeKey); err == nil && rec != nil {
			c.Send <- rec.Body
			return
		}
	}

	conv, err := s.conversations.FindByID(ctx, in.ConversationID)
	if err != nil {
		c.WriteError("not_found", "conversation not found")
		return
	}
	recipientID, err := s.authorizeSend(ctx, conv, c.UserID)
	if err != nil {
		c.WriteError("forbidden", "not permitted to message this conversation")
		return
	}

	created, err := s.persistMessage(ctx, conv.ID, c.UserID, in.Text, entities.MessageContentText)
	if err != nil {
		c.WriteError("send_failed", "message could not be saved")
		return
	}

	s.fanOutMessage(ctx, conv.ID, c.UserID, recipientID, created, c)

	if dedupeKey != "" {
		if frame, err := wsock.EncodeMessageCreated(conv.ID, toMessageDTO(created)); err == nil {
			_ = s.idempotency.Store(ctx, chatSendScope, dedupeKey, idempotency.Record{Status: 200, Body: frame})
		}
	}
}

func (s *ChatService) HandleReadSet(c *wsock.Client, in wsock.ReadSetIn) {
	ctx, cancel := utils.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	if err := s.MarkRead(ctx, c.UserID, in.UpToMessageID); err != nil {
		c.WriteError("read_failed", "could not advance read cursor")
	}
}

func (s *ChatService) HandleTypingSet(c *wsock.Client, in wsock.TypingSetIn) {
	conv, err := s.conversations.FindByID(context.Background(), in.ConversationID)
	if err != nil {
		return
	}
	other := conv.User1ID
	if other == c.UserID {
		other = conv.User2ID
	}
	frame, err := wsock.EncodeConversationTyping(in.ConversationID, c.UserID, in.State)
	if err != nil {
		return
	}
	s.hub.Send(other, frame)
}
