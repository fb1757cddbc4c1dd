package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// Service вторичный канал доставки через Telegram Bot API
// Копия уведомления уходит пользователям, привязавшим Telegram-аккаунт
type Service struct {
	bot BotAPI
}

// NewService создает новый экземпляр Telegram сервиса
func NewService(bot BotAPI) *Service {
	return &Service{
		bot: bot,
	}
}

// SendNotification отправляет копию уведомления в Telegram
// Заголовок жирным, тело обычным текстом, ссылка - inline-кнопкой
func (s *Service) SendNotification(chatID int64, notification *domain.UserNotification) error {
	if chatID == 0 {
		return ErrInvalidChatID
	}
	if notification.Header == "" {
		return ErrEmptyMessage
	}

	text := fmt.Sprintf("<b>%s</b>", notification.Header)
	if notification.Content != nil && *notification.Content != "" {
		text += "\n\n" + *notification.Content
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if notification.HasLink() {
		label := *notification.URL
		if notification.LinkLabel != nil && *notification.LinkLabel != "" {
			label = *notification.LinkLabel
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(label, *notification.URL),
			),
		)
	}

	_, err := s.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendMessage, err)
	}

	return nil
}
