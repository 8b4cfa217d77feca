package repositories

import (
	"context"
	"fmt"

	"dating-core/internal/entities"
)

const reportTable = "reports"

type ReportRepositoryInterface interface {
	Create(ctx context.Context, r *entities.Report) (*entities.Report, error)
}

type ReportRepository struct {
	db Querier
}

func NewReportRepository(db Querier) ReportRepositoryInterface {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, rep *entities.Report) (*entities.Report, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (reporter_id, target_id, conversation_id, category, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, reporter_id, target_id, conversation_id, category, reason, created_at`, reportTable)

	var created entities.Report
	row := r.db.QueryRow(ctx, query, rep.ReporterID, rep.TargetID, rep.ConversationID, rep.Category, rep.Reason)
	if err := row.Scan(&created.ID, &created.ReporterID, &created.TargetID, &created.ConversationID, &created.Category, &created.Reason, &created.CreatedAt); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return &created, nil
}
