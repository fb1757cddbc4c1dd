package job

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WikiControlService/pkg/psqlbuilder"
)

// jobColumns полный набор колонок таблицы broadcast_jobs
var jobColumns = []string{
	"id",
	"span_id",
	"kind",
	"actor_id",
	"target",
	"header",
	"content",
	"url",
	"icon",
	"status",
	"run_at",
	"attempts",
	"error_message",
	"created_at",
	"updated_at",
}

// Repository репозиторий очереди отложенных задач рассылки
// Очередь живёт в БД: воркер забирает queued задачи и выполняет фан-аут
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория задач
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create ставит задачу в очередь и возвращает её ID
func (r *Repository) Create(ctx context.Context, j *domain.BroadcastJob) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("broadcast_jobs").
		Columns(
			"span_id",
			"kind",
			"actor_id",
			"target",
			"header",
			"content",
			"url",
			"icon",
			"status",
			"run_at",
		).
		Values(
			j.SpanID,
			j.Kind,
			j.ActorID,
			j.Target,
			j.Header,
			j.Content,
			j.URL,
			j.Icon,
			j.Status,
			j.RunAt,
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

	j.ID = id
	j.CreatedAt = createdAt.Time
	j.UpdatedAt = updatedAt.Time

	return id, nil
}

// GetByID получает задачу по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.BroadcastJob, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(jobColumns...).
		From("broadcast_jobs").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	jobs, err := r.scanJobs(rows)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrJobNotFound
	}

	return jobs[0], nil
}

// GetQueuedJobs получает задачи, готовые к выполнению
// Используется JobRunner'ом: статус queued, либо failed с невыработанными попытками
// (повторный запуск безопасен - окна планируются заново, дубликаты событий приняты)
func (r *Repository) GetQueuedJobs(ctx context.Context, maxAttempts, limit int) ([]*domain.BroadcastJob, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(jobColumns...).
		From("broadcast_jobs").
		Where(squirrel.Or{
			squirrel.Eq{"status": domain.JobStatusQueued},
			squirrel.And{
				squirrel.Eq{"status": domain.JobStatusFailed},
				squirrel.Lt{"attempts": maxAttempts},
			},
		}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetQueuedJobs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetQueuedJobs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanJobs(rows)
}

// GetScheduledJobs получает все задачи, отложенные на конкретное время
// Используется scheduler'ом при старте приложения
func (r *Repository) GetScheduledJobs(ctx context.Context) ([]*domain.BroadcastJob, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(jobColumns...).
		From("broadcast_jobs").
		Where(squirrel.Eq{"status": domain.JobStatusScheduled}).
		OrderBy("run_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetScheduledJobs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetScheduledJobs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanJobs(rows)
}

// UpdateStatus обновляет статус задачи
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.JobStatus) error {
	return r.execUpdate(ctx, "UpdateStatus", psqlbuilder.Update("broadcast_jobs").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// MarkAsRunning переводит задачу в running с увеличением счётчика попыток
func (r *Repository) MarkAsRunning(ctx context.Context, id int64) error {
	return r.execUpdate(ctx, "MarkAsRunning", psqlbuilder.Update("broadcast_jobs").
		Set("status", domain.JobStatusRunning).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// MarkAsDone помечает задачу успешно завершённой
func (r *Repository) MarkAsDone(ctx context.Context, id int64) error {
	return r.execUpdate(ctx, "MarkAsDone", psqlbuilder.Update("broadcast_jobs").
		Set("status", domain.JobStatusDone).
		Set("error_message", nil).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// MarkAsFailed помечает задачу неудачной с сообщением об ошибке
func (r *Repository) MarkAsFailed(ctx context.Context, id int64, errorMsg string) error {
	return r.execUpdate(ctx, "MarkAsFailed", psqlbuilder.Update("broadcast_jobs").
		Set("status", domain.JobStatusFailed).
		Set("error_message", errorMsg).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// Cancel отменяет задачу, если она ещё не начала выполняться
func (r *Repository) Cancel(ctx context.Context, id int64) error {
	return r.execUpdate(ctx, "Cancel", psqlbuilder.Update("broadcast_jobs").
		Set("status", domain.JobStatusCancelled).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []domain.JobStatus{domain.JobStatusScheduled, domain.JobStatusQueued}}))
}

// execUpdate выполняет UPDATE и проверяет, что строка действительно была затронута
func (r *Repository) execUpdate(ctx context.Context, caller string, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, caller, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, caller, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, caller, err)
	}

	if rowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// scanJobs сканирует результаты запроса в слайс задач
func (r *Repository) scanJobs(rows *sql.Rows) ([]*domain.BroadcastJob, error) {
	jobs := make([]*domain.BroadcastJob, 0)

	for rows.Next() {
		var j domain.BroadcastJob
		var runAt sql.NullTime
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&j.ID,
			&j.SpanID,
			&j.Kind,
			&j.ActorID,
			&j.Target,
			&j.Header,
			&j.Content,
			&j.URL,
			&j.Icon,
			&j.Status,
			&runAt,
			&j.Attempts,
			&j.ErrorMessage,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanJobs - scan row: %v", ErrScanRow, err)
		}

		if runAt.Valid {
			t := runAt.Time
			j.RunAt = &t
		}
		j.CreatedAt = createdAt.Time
		j.UpdatedAt = updatedAt.Time

		jobs = append(jobs, &j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanJobs - rows error: %v", ErrScanRow, err)
	}

	return jobs, nil
}
