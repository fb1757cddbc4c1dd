package cdn

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("cdn client: internal error")

	// ErrPurgeFailed возвращается, когда CDN отклонил запрос на сброс кэша
	ErrPurgeFailed = errors.New("cdn client: purge failed")
)
