package delivery

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WikiControlService/pkg/psqlbuilder"
)

// Repository репозиторий для записи доставленных пользователям уведомлений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория доставок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBatch создаёт уведомления для всех получателей одного события за один запрос
// Возвращает список ID созданных записей
func (r *Repository) CreateBatch(ctx context.Context, notifications []*domain.UserNotification) ([]int64, error) {
	if len(notifications) == 0 {
		return []int64{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("user_notifications").
		Columns(
			"event_id",
			"user_id",
			"kind",
			"icon",
			"header",
			"content",
			"url",
			"link_label",
		)

	for _, n := range notifications {
		builder = builder.Values(
			n.EventID,
			n.UserID,
			n.Kind,
			n.Icon,
			n.Header,
			n.Content,
			n.URL,
			n.LinkLabel,
		)
	}

	query, args, err := builder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0, len(notifications))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: CreateBatch - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CreateBatch - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}

// CountByEventID возвращает число уведомлений, созданных по событию
func (r *Repository) CountByEventID(ctx context.Context, eventID int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("user_notifications").
		Where(squirrel.Eq{"event_id": eventID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountByEventID - build select query: %v", ErrBuildQuery, err)
	}

	var count int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByEventID - scan: %v", ErrScanRow, err)
	}

	return count, nil
}
