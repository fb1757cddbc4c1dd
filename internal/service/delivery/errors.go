package delivery

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках доставки
	ErrInternal = errors.New("internal delivery error")
)
