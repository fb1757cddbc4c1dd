package dbmetrics

import (
	"context"
	"database/sql"
)

type txContextKey struct{}

// TxBeginner умеет начинать транзакции, возвращая TxExecutor
// Реализуется инструментированной обёрткой DB и адаптером над *sql.DB
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error)
}

// sqlBeginner адаптер *sql.DB под интерфейс TxBeginner (без метрик)
type sqlBeginner struct {
	db *sql.DB
}

// NewBeginner адаптирует *sql.DB под TxBeginner для работы без метрик
func NewBeginner(db *sql.DB) TxBeginner {
	return &sqlBeginner{db: db}
}

func (b *sqlBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	return b.db.BeginTx(ctx, opts)
}

// WithTx кладёт транзакцию в контекст
// Репозитории достают её через GetExecutor и выполняют запросы внутри транзакции
func WithTx(ctx context.Context, tx TxExecutor) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext достаёт транзакцию из контекста, если она там есть
func TxFromContext(ctx context.Context) (TxExecutor, bool) {
	tx, ok := ctx.Value(txContextKey{}).(TxExecutor)
	return tx, ok
}

// IsInTransaction проверяет, находится ли контекст внутри транзакции
func IsInTransaction(ctx context.Context) bool {
	_, ok := TxFromContext(ctx)
	return ok
}

// GetExecutor возвращает транзакцию из контекста, либо переданный executor
// Благодаря этому один и тот же код репозитория работает и в транзакции, и вне её
func GetExecutor(ctx context.Context, db DBExecutor) DBExecutor {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}
