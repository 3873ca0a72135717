package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"aether-planner/internal/model"
)

// TelegramNotifier pushes notifications to a single chat. Delivery failures
// are logged and swallowed.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

// PlayAlarm is a no-op: the receiving client renders its own sound when the
// message arrives.
func (n *TelegramNotifier) PlayAlarm(model.Ringtone) {}

func (n *TelegramNotifier) Show(title, body, tag string) {
	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf("🔔 %s\n%s", title, body))
	if _, err := n.api.Send(msg); err != nil {
		log.Printf("telegram: send %s: %v", tag, err)
	}
}
