package repositories

import (
	"context"
	"errors"
	"fmt"

	"dating-core/internal/entities"
	apperrors "dating-core/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const messageTable = "messages"
const messageSelectFields = "id, conversation_id, sender_id, content, content_type, created_at, read_at, is_deleted"

type MessageRepositoryInterface interface {
	Create(ctx context.Context, m *entities.Message) (*entities.Message, error)
	FindByID(ctx context.Context, id int64) (*entities.Message, error)
	// ListBefore returns a backwards page ordered created_at DESC, id DESC;
	// before=0 starts from the newest message (spec.md §4.5). Callers
	// reverse the slice for chronological client display.
	ListBefore(ctx context.Context, conversationID int64, before int64, limit int) ([]entities.Message, error)
	MarkReadUpTo(ctx context.Context, conversationID int64, upToMessageID int64) error
}

type MessageRepository struct {
	db Querier
}

func NewMessageRepository(db Querier) MessageRepositoryInterface {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) scan(row pgx.Row, m *entities.Message) error {
	return row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.ContentType, &m.CreatedAt, &m.ReadAt, &m.IsDeleted)
}

func (r *MessageRepository) Create(ctx context.Context, m *entities.Message) (*entities.Message, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (conversation_id, sender_id, content, content_type, created_at, is_deleted)
		VALUES ($1, $2, $3, $4, NOW(), false)
		RETURNING %s`, messageTable, messageSelectFields)

	var created entities.Message
	row := r.db.QueryRow(ctx, query, m.ConversationID, m.SenderID, m.Content, m.ContentType)
	if err := r.scan(row, &created); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return &created, nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id int64) (*entities.Message, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, messageSelectFields, messageTable)
	var m entities.Message
	if err := r.scan(r.db.QueryRow(ctx, query, id), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &m, nil
}

func (r *MessageRepository) ListBefore(ctx context.Context, conversationID int64, before int64, limit int) ([]entities.Message, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE conversation_id = $1 AND ($2 = 0 OR id < $2) AND is_deleted = false
		ORDER BY created_at DESC, id DESC
		LIMIT $3`, messageSelectFields, messageTable)

	rows, err := r.db.Query(ctx, query, conversationID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]entities.Message, 0)
	for rows.Next() {
		var m entities.Message
		if err := r.scan(rows, &m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *MessageRepository) MarkReadUpTo(ctx context.Context, conversationID int64, upToMessageID int64) error {
	query := fmt.Sprintf(`
		UPDATE %s SET read_at = NOW()
		WHERE conversation_id = $1 AND id <= $2 AND read_at IS NULL`, messageTable)
	_, err := r.db.Exec(ctx, query, conversationID, upToMessageID)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}
