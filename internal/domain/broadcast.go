package domain

// BroadcastKind тип рассылаемого уведомления
type BroadcastKind string

const (
	BroadcastKindNotice BroadcastKind = "notice" // Нейтральное уведомление
	BroadcastKindAlert  BroadcastKind = "alert"  // Важное уведомление
)

// Valid проверяет, что тип рассылки известен системе
func (k BroadcastKind) Valid() bool {
	return k == BroadcastKindNotice || k == BroadcastKindAlert
}

// DispatchMode стратегия выполнения фан-аута по всем пользователям
// Выбирается вызывающей стороной явно, по умолчанию берётся из конфига
type DispatchMode string

const (
	DispatchModeSync     DispatchMode = "sync"     // Все окна эмитятся до возврата из запроса
	DispatchModeDeferred DispatchMode = "deferred" // Планирование и эмиссия выполняются воркером
)

// Valid проверяет, что стратегия известна системе
func (m DispatchMode) Valid() bool {
	return m == DispatchModeSync || m == DispatchModeDeferred
}

// DefaultIcon иконка по умолчанию для уведомлений без иконки
const DefaultIcon = "robot"

// Window окно непрерывного диапазона user id, обрабатываемое как одно событие
// Окна одной рассылки непрерывны, не пересекаются и вместе покрывают [1, maxID]
type Window struct {
	StartID int64
	EndID   int64
}
