package user

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-WikiControlService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WikiControlService/pkg/psqlbuilder"
)

// UpdateEmail меняет email учётки и обновляет отметку подтверждения адреса
func (r *Repository) UpdateEmail(ctx context.Context, id int64, email string, authenticatedAt time.Time) error {
	return r.execUpdate(ctx, "UpdateEmail", psqlbuilder.Update("users").
		Set("email", email).
		Set("email_authenticated_at", authenticatedAt).
		Set("touched_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// UpdatePasswordHash меняет хэш пароля учётки
// Пустой хэш означает, что вход по паролю для учётки отключён
func (r *Repository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.execUpdate(ctx, "UpdatePasswordHash", psqlbuilder.Update("users").
		Set("password_hash", hash).
		Set("touched_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// SetRealName меняет реальное имя учётки
func (r *Repository) SetRealName(ctx context.Context, id int64, realName string) error {
	return r.execUpdate(ctx, "SetRealName", psqlbuilder.Update("users").
		Set("real_name", realName).
		Set("touched_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// Rename меняет имя учётки
func (r *Repository) Rename(ctx context.Context, id int64, newName string) error {
	return r.execUpdate(ctx, "Rename", psqlbuilder.Update("users").
		Set("name", newName).
		Set("touched_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// ReassignEdits переназначает правки одной учётки на другую
// Обновляет revisions, archived_revisions и recent_changes, затем пересчитывает
// счётчики правок обеих учёток; вызывается внутри транзакции txmanager'а
func (r *Repository) ReassignEdits(ctx context.Context, fromID, toID int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	tables := []string{"revisions", "archived_revisions", "recent_changes"}

	var moved int64
	for _, table := range tables {
		query, args, err := psqlbuilder.Update(table).
			Set("user_id", toID).
			Where(squirrel.Eq{"user_id": fromID}).
			ToSql()

		if err != nil {
			return 0, fmt.Errorf("%w: ReassignEdits - build update for %s: %v", ErrBuildQuery, table, err)
		}

		result, err := executor.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("%w: ReassignEdits - execute update for %s: %v", ErrExecQuery, table, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("%w: ReassignEdits - rows affected for %s: %v", ErrExecQuery, table, err)
		}
		moved += rowsAffected
	}

	// Счётчики правок пересчитываются из фактического содержимого revisions
	for _, id := range []int64{fromID, toID} {
		if err := r.recountEdits(ctx, id); err != nil {
			return 0, err
		}
	}

	return moved, nil
}

// recountEdits пересчитывает edit_count учётки по таблице revisions
func (r *Repository) recountEdits(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("users").
		Set("edit_count", squirrel.Expr("(SELECT COUNT(*) FROM revisions WHERE user_id = users.id)")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: recountEdits - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: recountEdits - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// execUpdate выполняет UPDATE и проверяет, что строка действительно существовала
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
		return ErrUserNotFound
	}

	return nil
}
