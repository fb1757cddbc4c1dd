package broadcast

import "errors"

var (
	// ErrInvalidKind возвращается при неизвестном типе рассылки
	ErrInvalidKind = errors.New("invalid broadcast kind")

	// ErrInvalidMode возвращается при неизвестной стратегии фан-аута
	ErrInvalidMode = errors.New("invalid dispatch mode")

	// ErrInvalidIcon возвращается, когда иконка не входит в список допустимых
	ErrInvalidIcon = errors.New("invalid icon")

	// ErrEmptyHeader возвращается при пустом заголовке уведомления
	ErrEmptyHeader = errors.New("header cannot be empty")

	// ErrNoValidRecipients возвращается, когда ни один из получателей не разрешился
	ErrNoValidRecipients = errors.New("no valid recipients")

	// ErrJobNotFound возвращается, когда задача рассылки не найдена
	ErrJobNotFound = errors.New("broadcast job not found")

	// ErrCannotCancel возвращается при попытке отменить задачу в терминальном статусе
	ErrCannotCancel = errors.New("job cannot be cancelled")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("internal broadcast error")
)
