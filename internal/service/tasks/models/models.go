package models

// TaskType тип задачи обслуживания аккаунта
type TaskType string

const (
	TaskChangeEmail    TaskType = "change_email"
	TaskChangePassword TaskType = "change_password"
	TaskReassignEdits  TaskType = "reassign_edits"
	TaskAnonymize      TaskType = "anonymize"
	TaskPurgeCache     TaskType = "purge_cache"
)

// Valid проверяет, что тип задачи известен системе
func (t TaskType) Valid() bool {
	switch t {
	case TaskChangeEmail, TaskChangePassword, TaskReassignEdits, TaskAnonymize, TaskPurgeCache:
		return true
	}
	return false
}

// RunTaskInput входные данные для выполнения задачи
// Набор обязательных полей зависит от типа задачи
type RunTaskInput struct {
	Task     TaskType
	ActorID  int64
	Username string // Целевой пользователь (кроме purge_cache)

	Email      string   // change_email
	Password   string   // change_password
	ToUsername string   // reassign_edits: получатель правок
	URLs       []string // purge_cache
	Comment    *string  // Необязательный комментарий оператора для журнала
}

// TaskResult результат выполнения задачи
type TaskResult struct {
	Task          TaskType
	Warning       *string // Некритичное замечание, задача при этом выполнена
	AffectedRows  int64   // reassign_edits: перенесённые правки, purge_cache: сброшенные страницы
	NewUsername   *string // anonymize: новое имя аккаунта
	SessionsEnded int64   // change_password, anonymize: завершённые сессии
}
