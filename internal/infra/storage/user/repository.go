package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WikiControlService/pkg/psqlbuilder"
)

// userColumns полный набор колонок таблицы users
var userColumns = []string{
	"id",
	"name",
	"real_name",
	"email",
	"password_hash",
	"email_authenticated_at",
	"telegram_chat_id",
	"edit_count",
	"groups",
	"is_system",
	"registered_at",
	"touched_at",
	"deleted_at",
	"blocked_by",
	"blocked_at",
	"block_expires_at",
}

// Repository репозиторий для работы с учётными записями вики
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория пользователей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает пользователя по ID
// Возвращает и удалённые учётки: проверка "живости" остаётся за вызывающим
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanUser(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByName получает живого пользователя по имени учётки
func (r *Repository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"name": name}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanUser(executor.QueryRowContext(ctx, query, args...), "GetByName")
}

// MaxUserID возвращает максимальный user id на момент вызова
// Единственный агрегатный запрос планировщика окон; 0 - пользователей нет
func (r *Repository) MaxUserID(ctx context.Context) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COALESCE(MAX(id), 0)").
		From("users").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: MaxUserID - build select query: %v", ErrBuildQuery, err)
	}

	var max int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&max); err != nil {
		return 0, fmt.Errorf("%w: MaxUserID - scan: %v", ErrScanRow, err)
	}

	return max, nil
}

// ListIDRange возвращает зарегистрированные учётки с id в диапазоне [startID, endID]
// Удалённые и системные учётки отфильтровываются на уровне запроса
func (r *Repository) ListIDRange(ctx context.Context, startID, endID int64) ([]*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(userColumns...).
		From("users").
		Where(squirrel.GtOrEq{"id": startID}).
		Where(squirrel.LtOrEq{"id": endID}).
		Where("deleted_at IS NULL").
		Where(squirrel.Eq{"is_system": false}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListIDRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListIDRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanUsers(rows, "ListIDRange")
}

// GetByIDs возвращает зарегистрированные учётки с указанными id
// Несуществующие id молча пропускаются - это не ошибка
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": ids}).
		Where("deleted_at IS NULL").
		Where(squirrel.Eq{"is_system": false}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanUsers(rows, "GetByIDs")
}

// LastEditAt возвращает время последней правки пользователя, nil если правок нет
func (r *Repository) LastEditAt(ctx context.Context, userID int64) (*time.Time, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("MAX(created_at)").
		From("revisions").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: LastEditAt - build select query: %v", ErrBuildQuery, err)
	}

	var lastEdit sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&lastEdit); err != nil {
		return nil, fmt.Errorf("%w: LastEditAt - scan: %v", ErrScanRow, err)
	}

	if !lastEdit.Valid {
		return nil, nil
	}
	return &lastEdit.Time, nil
}

// scanUser сканирует одну строку результата в пользователя
func (r *Repository) scanUser(row *sql.Row, caller string) (*domain.User, error) {
	var user domain.User
	var registeredAt, touchedAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.RealName,
		&user.Email,
		&user.PasswordHash,
		&user.EmailAuthenticatedAt,
		&user.TelegramChatID,
		&user.EditCount,
		pq.Array(&user.Groups),
		&user.IsSystem,
		&registeredAt,
		&touchedAt,
		&user.DeletedAt,
		&user.BlockedBy,
		&user.BlockedAt,
		&user.BlockExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan user: %v", ErrScanRow, caller, err)
	}

	user.RegisteredAt = registeredAt.Time
	user.TouchedAt = touchedAt.Time

	return &user, nil
}

// scanUsers сканирует результаты запроса в слайс пользователей
func (r *Repository) scanUsers(rows *sql.Rows, caller string) ([]*domain.User, error) {
	users := make([]*domain.User, 0)

	for rows.Next() {
		var user domain.User
		var registeredAt, touchedAt sql.NullTime

		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.RealName,
			&user.Email,
			&user.PasswordHash,
			&user.EmailAuthenticatedAt,
			&user.TelegramChatID,
			&user.EditCount,
			pq.Array(&user.Groups),
			&user.IsSystem,
			&registeredAt,
			&touchedAt,
			&user.DeletedAt,
			&user.BlockedBy,
			&user.BlockedAt,
			&user.BlockExpiresAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, caller, err)
		}

		user.RegisteredAt = registeredAt.Time
		user.TouchedAt = touchedAt.Time

		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, caller, err)
	}

	return users, nil
}
