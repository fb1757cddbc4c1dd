package tasks

import "errors"

var (
	// ErrUnknownTask возвращается при неизвестном типе задачи
	ErrUnknownTask = errors.New("unknown task")

	// ErrUserNotFound возвращается, когда целевой пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrSelfTarget возвращается при попытке выполнить задачу над собственным аккаунтом
	ErrSelfTarget = errors.New("cannot run task on your own account")

	// ErrInvalidInput возвращается при некорректных параметрах задачи
	ErrInvalidInput = errors.New("invalid task input")

	// ErrPasswordTooWeak возвращается, когда пароль короче минимальной длины
	ErrPasswordTooWeak = errors.New("password does not meet the policy")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("internal tasks error")
)
