package repositories

import (
	"context"
	"errors"
	"fmt"

	"dating-core/internal/entities"

	"github.com/jackc/pgx/v5"
)

const readCursorTable = "read_cursors"

type ReadCursorRepositoryInterface interface {
	// AdvanceTo moves the (conversation,user) cursor forward; lower ids
	// than the current value are ignored, enforcing monotonicity
	// (spec.md §8 property 6).
	AdvanceTo(ctx context.Context, conversationID, userID, messageID int64) error
	Get(ctx context.Context, conversationID, userID int64) (*entities.ReadCursor, error)
}

type ReadCursorRepository struct {
	db Querier
}

func NewReadCursorRepository(db Querier) ReadCursorRepositoryInterface {
	return &ReadCursorRepository{db: db}
}

func (r *ReadCursorRepository) AdvanceTo(ctx context.Context, conversationID, userID, messageID int64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (conversation_id, user_id, last_read_message_id, last_read_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (conversation_id, user_id) DO UPDATE
			SET last_read_message_id = GREATEST(%s.last_read_message_id, EXCLUDED.last_read_message_id),
				last_read_at = CASE WHEN EXCLUDED.last_read_message_id > %s.last_read_message_id
					THEN EXCLUDED.last_read_at ELSE %s.last_read_at END`,
		readCursorTable, readCursorTable, readCursorTable, readCursorTable)

	_, err := r.db.Exec(ctx, query, conversationID, userID, messageID)
	if err != nil {
		return fmt.Errorf("advance read cursor: %w", err)
	}
	return nil
}

func (r *ReadCursorRepository) Get(ctx context.Context, conversationID, userID int64) (*entities.ReadCursor, error) {
	query := fmt.Sprintf(`
		SELECT conversation_id, user_id, last_read_message_id, last_read_at
		FROM %s WHERE conversation_id = $1 AND user_id = $2`, readCursorTable)

	var rc entities.ReadCursor
	err := r.db.QueryRow(ctx, query, conversationID, userID).Scan(&rc.ConversationID, &rc.UserID, &rc.LastReadMessageID, &rc.LastReadAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entities.ReadCursor{ConversationID: conversationID, UserID: userID}, nil
		}
		return nil, fmt.Errorf("get read cursor: %w", err)
	}
	return &rc, nil
}
