// Package notify delivers out-of-band messages to users and admins.
// Delivery is best effort: a failure for one recipient never blocks the rest.
package notify

import (
	"context"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/psfastpay/core/logger"
	"github.com/m3rciful/psfastpay/core/telegram/sender"
)

// Notifier is the outbound messaging contract the core calls through.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, text string) error
	NotifyAdmins(ctx context.Context, text string)
}

// MessageSender is the subset of *tele.Bot used for delivery.
type MessageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Telegram sends notifications through the async sender dispatcher so slow
// or failing Telegram calls never stall the event that triggered them.
type Telegram struct {
	bot        MessageSender
	dispatcher *sender.Dispatcher
	admins     []int64
}

// NewTelegram constructs the Telegram notifier. A nil dispatcher makes
// deliveries synchronous, which the tests rely on.
func NewTelegram(bot MessageSender, dispatcher *sender.Dispatcher, admins []int64) *Telegram {
	return &Telegram{
		bot:        bot,
		dispatcher: dispatcher,
		admins:     append([]int64(nil), admins...),
	}
}

// NotifyUser sends text to a single user.
func (t *Telegram) NotifyUser(ctx context.Context, userID int64, text string) error {
	return t.deliver(ctx, userID, text)
}

// NotifyAdmins fans text out to every configured admin. Per-recipient
// failures are logged and skipped.
func (t *Telegram) NotifyAdmins(ctx context.Context, text string) {
	for _, admin := range t.admins {
		if err := t.deliver(ctx, admin, text); err != nil {
			logger.SVCNotify.Warn("admin notify failed",
				slog.String("event", "notify.admin"),
				slog.Int64("user_id", admin),
				slog.String("err", err.Error()),
			)
		}
	}
}

func (t *Telegram) deliver(ctx context.Context, userID int64, text string) error {
	run := func() error {
		_, err := t.bot.Send(tele.ChatID(userID), text)
		return err
	}
	if t.dispatcher == nil {
		return run()
	}
	return t.dispatcher.Enqueue(ctx, "notify."+strconv.FormatInt(userID, 10), "sendMessage", run)
}
