package telegram

import "errors"

var (
	// ErrInvalidChatID возвращается при нулевом chat ID
	ErrInvalidChatID = errors.New("invalid chat ID")

	// ErrEmptyMessage возвращается при пустом тексте сообщения
	ErrEmptyMessage = errors.New("message text cannot be empty")

	// ErrSendMessage возвращается при ошибке отправки сообщения
	ErrSendMessage = errors.New("failed to send message")
)
