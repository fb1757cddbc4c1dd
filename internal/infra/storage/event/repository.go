package event

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WikiControlService/pkg/psqlbuilder"
)

// eventColumns полный набор колонок таблицы events
var eventColumns = []string{
	"id",
	"event_type",
	"actor_id",
	"target",
	"header",
	"content",
	"url",
	"icon",
	"status",
	"error_message",
	"retry_count",
	"delivered_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с эмитированными событиями рассылок
// Вставка строки в events - это и есть "эмиссия": долговечная передача события
// подсистеме доставки; дальше событием владеет воркер
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория событий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create эмитит одно событие и возвращает его ID
func (r *Repository) Create(ctx context.Context, event *domain.Event) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("events").
		Columns(
			"event_type",
			"actor_id",
			"target",
			"header",
			"content",
			"url",
			"icon",
			"status",
		).
		Values(
			event.Type,
			event.ActorID,
			event.Target,
			event.Header,
			event.Content,
			event.URL,
			event.Icon,
			domain.EventStatusPending,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var id int64
	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id, &createdAt, &updatedAt)

	if err != nil {
		return 0, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	event.ID = id
	event.Status = domain.EventStatusPending
	event.CreatedAt = createdAt.Time
	event.UpdatedAt = updatedAt.Time

	return id, nil
}

// GetByID получает событие по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(eventColumns...).
		From("events").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var event domain.Event
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&event.ID,
		&event.Type,
		&event.ActorID,
		&event.Target,
		&event.Header,
		&event.Content,
		&event.URL,
		&event.Icon,
		&event.Status,
		&event.ErrorMessage,
		&event.RetryCount,
		&event.DeliveredAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan event: %v", ErrScanRow, err)
	}

	event.CreatedAt = createdAt.Time
	event.UpdatedAt = updatedAt.Time

	return &event, nil
}

// List получает список событий с фильтрацией
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(eventColumns...).
		From("events").
		OrderBy("created_at DESC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.Type != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"event_type": *filter.Type})
	}

	// target хранится как JSONB, фильтрация по типу селектора через ->>
	if filter.TargetType != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"target->>'target_type'": *filter.TargetType})
	}

	if filter.ActorID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"actor_id": *filter.ActorID})
	}

	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(uint64(filter.Offset))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// scanEvents сканирует результаты запроса в слайс событий
func (r *Repository) scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)

	for rows.Next() {
		var event domain.Event
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&event.ID,
			&event.Type,
			&event.ActorID,
			&event.Target,
			&event.Header,
			&event.Content,
			&event.URL,
			&event.Icon,
			&event.Status,
			&event.ErrorMessage,
			&event.RetryCount,
			&event.DeliveredAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanEvents - scan row: %v", ErrScanRow, err)
		}

		event.CreatedAt = createdAt.Time
		event.UpdatedAt = updatedAt.Time

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanEvents - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}
