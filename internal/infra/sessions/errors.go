package sessions

import "errors"

var (
	ErrConnect    = errors.New("failed to connect to redis")
	ErrInvalidate = errors.New("failed to invalidate sessions")
)
