package audience

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках разрешения аудитории
	ErrInternal = errors.New("internal audience error")
)
