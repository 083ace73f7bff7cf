package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/psfastpay/core/telegram/ui"
)

// Bot satisfies ui.FallbackProvider for updates nothing else claimed.
var _ ui.FallbackProvider = (*Bot)(nil)

// UnknownText nudges the user back to the button flow.
func (b *Bot) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send("Я понимаю только кнопки и команды. Начните с /start.")
	}
}

// UnknownDocument reminds that proofs must arrive as photos.
func (b *Bot) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Reply("Пришлите подтверждение оплаты фотографией с номером заказа #<id> в подписи.")
	}
}

// UnknownCallback answers stale or unsupported buttons.
func (b *Bot) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: msgActionInvalid})
	}
}
