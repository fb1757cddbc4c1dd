package event

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WikiControlService/pkg/psqlbuilder"
)

// GetPendingEvents получает список pending событий для доставки
// Используется воркером доставки для обработки очереди
func (r *Repository) GetPendingEvents(ctx context.Context, limit int) ([]*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(eventColumns...).
		From("events").
		Where(squirrel.Eq{"status": domain.EventStatusPending}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetPendingEvents - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetPendingEvents - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// MarkAsDelivered помечает событие как доставленное
func (r *Repository) MarkAsDelivered(ctx context.Context, id int64, deliveredAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("events").
		Set("status", domain.EventStatusDelivered).
		Set("delivered_at", deliveredAt).
		Set("error_message", nil).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkAsDelivered - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkAsDelivered - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkAsDelivered - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// MarkAsFailed помечает событие как недоставленное с сообщением об ошибке
// Опционально увеличивает счётчик попыток доставки
func (r *Repository) MarkAsFailed(ctx context.Context, id int64, errorMsg string, incrementRetry bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("events").
		Set("status", domain.EventStatusFailed).
		Set("error_message", errorMsg).
		Set("updated_at", squirrel.Expr("now()"))

	if incrementRetry {
		updateBuilder = updateBuilder.Set("retry_count", squirrel.Expr("retry_count + 1"))
	}

	query, args, err := updateBuilder.Where(squirrel.Eq{"id": id}).ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkAsFailed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkAsFailed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkAsFailed - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}
