package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WikiControlService/pkg/psqlbuilder"
)

var auditColumns = []string{
	"id",
	"actor_id",
	"action",
	"target_user_id",
	"comment",
	"details",
	"created_at",
}

// Repository репозиторий журнала административных действий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория аудита
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create записывает действие администратора в журнал
func (r *Repository) Create(ctx context.Context, record *domain.AuditRecord) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("audit_log").
		Columns("actor_id", "action", "target_user_id", "comment", "details").
		Values(record.ActorID, record.Action, record.TargetUserID, record.Comment, record.Details).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var id int64
	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id, &createdAt)

	if err != nil {
		return 0, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	record.ID = id
	record.CreatedAt = createdAt.Time

	return id, nil
}

// ListFilter фильтры для выборки записей журнала
type ListFilter struct {
	ActorID      *int64
	Action       *domain.AuditAction
	TargetUserID *int64
	Limit        int
	Offset       int
}

// List получает записи журнала с фильтрацией, свежие первыми
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*domain.AuditRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(auditColumns...).
		From("audit_log").
		OrderBy("created_at DESC")

	if filter.ActorID != nil {
		builder = builder.Where(squirrel.Eq{"actor_id": *filter.ActorID})
	}
	if filter.Action != nil {
		builder = builder.Where(squirrel.Eq{"action": *filter.Action})
	}
	if filter.TargetUserID != nil {
		builder = builder.Where(squirrel.Eq{"target_user_id": *filter.TargetUserID})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.AuditRecord, 0)

	for rows.Next() {
		var rec domain.AuditRecord
		var createdAt sql.NullTime

		err = rows.Scan(
			&rec.ID,
			&rec.ActorID,
			&rec.Action,
			&rec.TargetUserID,
			&rec.Comment,
			&rec.Details,
			&createdAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}

		rec.CreatedAt = createdAt.Time
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}
