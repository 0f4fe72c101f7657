package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/BenSmith123/crypto-analyser/pkg/utils"
)

// TelegramNotifier отправляет отчёты о запусках и алерты в Telegram.
// Алерты уходят в отдельный чат, чтобы важное не тонуло в логах запусков.
// Отправка best-effort: сбой уведомления не должен ронять торговый проход
type TelegramNotifier struct {
	api         *tgbotapi.BotAPI
	logChatID   int64
	alertChatID int64
	logger      *utils.Logger
}

func NewTelegramNotifier(token string, logChatID, alertChatID int64, logger *utils.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	if alertChatID == 0 {
		alertChatID = logChatID
	}

	return &TelegramNotifier{
		api:         bot,
		logChatID:   logChatID,
		alertChatID: alertChatID,
		logger:      logger,
	}, nil
}

// Send отправляет сообщение в нужный чат. Ошибка отправки логируется
// и не возвращается
func (n *TelegramNotifier) Send(message string, isAlert bool) {
	if message == "" {
		return
	}

	chatID := n.logChatID
	if isAlert {
		chatID = n.alertChatID
	}

	msg := tgbotapi.NewMessage(chatID, message)
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("Failed to send telegram message: %v", err)
	}
}
