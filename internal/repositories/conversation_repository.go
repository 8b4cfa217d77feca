package repositories

import (
	"context"
	"errors"
	"fmt"

	"dating-core/internal/entities"
	apperrors "dating-core/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const conversationTable = "conversations"
const conversationSelectFields = "id, user1_id, user2_id, created_at, updated_at, blocked_by"

// ConversationWithUnread is the row shape for GET /chat/conversations,
// joining the per-caller unread count off ReadCursor (spec.md §4.5).
type ConversationWithUnread struct {
	entities.Conversation
	UnreadCount int
}

type ConversationRepositoryInterface interface {
	// GetOrCreate returns the existing canonical conversation for the pair,
	// creating it if absent; a concurrent create collapses to the winner's
	// row via the (user1_id, user2_id) unique constraint, same pattern as
	// match creation.
	GetOrCreate(ctx context.Context, userA, userB int64) (*entities.Conversation, error)
	FindByID(ctx context.Context, id int64) (*entities.Conversation, error)
	ListForUser(ctx context.Context, userID int64, afterUpdatedBefore *int64, limit int) ([]ConversationWithUnread, error)
	TouchUpdatedAt(ctx context.Context, id int64) error
	SetBlockedBy(ctx context.Context, id int64, byUserID int64) error
}

type ConversationRepository struct {
	db Querier
}

func NewConversationRepository(db Querier) ConversationRepositoryInterface {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) scan(row pgx.Row, c *entities.Conversation) error {
	return row.Scan(&c.ID, &c.User1ID, &c.User2ID, &c.CreatedAt, &c.UpdatedAt, &c.BlockedBy)
}

func (r *ConversationRepository) GetOrCreate(ctx context.Context, userA, userB int64) (*entities.Conversation, error) {
	lo, hi := canonicalPair(userA, userB)
	query := fmt.Sprintf(`
		INSERT INTO %s (user1_id, user2_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING %s`, conversationTable, conversationSelectFields)

	var c entities.Conversation
	err := r.scan(r.db.QueryRow(ctx, query, lo, hi), &c)
	if err == nil {
		return &c, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return r.findByPair(ctx, lo, hi)
	}
	return nil, fmt.Errorf("create conversation: %w", err)
}

func (r *ConversationRepository) findByPair(ctx context.Context, lo, hi int64) (*entities.Conversation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user1_id = $1 AND user2_id = $2`, conversationSelectFields, conversationTable)
	var c entities.Conversation
	if err := r.scan(r.db.QueryRow(ctx, query, lo, hi), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find conversation by pair: %w", err)
	}
	return &c, nil
}

func (r *ConversationRepository) FindByID(ctx context.Context, id int64) (*entities.Conversation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, conversationSelectFields, conversationTable)
	var c entities.Conversation
	if err := r.scan(r.db.QueryRow(ctx, query, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return &c, nil
}

// ListForUser orders by updated_at DESC; afterUpdatedBefore is the id of
// the last row from the previous page, used as a stable tiebreaker cursor.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID int64, afterUpdatedBefore *int64, limit int) ([]ConversationWithUnread, error) {
	var cursorID int64
	if afterUpdatedBefore != nil {
		cursorID = *afterUpdatedBefore
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.user1_id, c.user2_id, c.created_at, c.updated_at, c.blocked_by,
			COALESCE(m.cnt, 0) AS unread_count
		FROM %s c
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS cnt FROM messages msg
			WHERE msg.conversation_id = c.id
				AND msg.sender_id != $1
				AND msg.id > COALESCE((
					SELECT last_read_message_id FROM read_cursors rc
					WHERE rc.conversation_id = c.id AND rc.user_id = $1
				), 0)
		) m ON true
		WHERE (c.user1_id = $1 OR c.user2_id = $1)
			AND ($2 = 0 OR c.id < $2)
		ORDER BY c.updated_at DESC
		LIMIT $3`, conversationTable)

	rows, err := r.db.Query(ctx, query, userID, cursorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := make([]ConversationWithUnread, 0)
	for rows.Next() {
		var c ConversationWithUnread
		if err := rows.Scan(&c.ID, &c.User1ID, &c.User2ID, &c.CreatedAt, &c.UpdatedAt, &c.BlockedBy, &c.UnreadCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ConversationRepository) TouchUpdatedAt(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET updated_at = NOW() WHERE id = $1`, conversationTable)
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ConversationRepository) SetBlockedBy(ctx context.Context, id int64, byUserID int64) error {
	query := fmt.Sprintf(`UPDATE %s SET blocked_by = $1, updated_at = NOW() WHERE id = $2`, conversationTable)
	tag, err := r.db.Exec(ctx, query, byUserID, id)
	if err != nil {
		return fmt.Errorf("block conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
