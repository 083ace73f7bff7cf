package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/psfastpay/core/telegram/format"
	tghelpers "github.com/m3rciful/psfastpay/core/telegram/helpers"
	"github.com/m3rciful/psfastpay/internal/ledger"
)

var orderRefRe = regexp.MustCompile(`#(\d+)`)

// parseOrderRef extracts the order identifier from a proof caption.
func parseOrderRef(caption string) (int64, bool) {
	m := orderRefRe.FindStringSubmatch(caption)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// HandlePhoto processes a payment-proof photo: the caption must reference an
// order (#id), the photo file id becomes the proof, and admins are notified.
func (b *Bot) HandlePhoto(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return nil
	}

	orderID, ok := parseOrderRef(msg.Caption)
	if !ok {
		return c.Reply("Не найден номер заказа. Укажите #<id> в подписи.")
	}

	ctx := tghelpers.BuildContext(c)
	order, err := b.orders.SubmitProof(ctx, orderID, msg.Photo.FileID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return c.Reply(fmt.Sprintf("Заказ #%d не найден.", orderID))
		}
		return fmt.Errorf("submit proof for order %d: %w", orderID, err)
	}

	sender := c.Sender()
	from := senderLabel(sender)
	b.notifier(c).NotifyAdmins(ctx, fmt.Sprintf(
		"Платёжное подтверждение для заказа #%d от %s. Подтвердите командой: /confirm %d",
		order.ID, from, order.ID))

	return c.Reply("Платёжное подтверждение отправлено менеджеру. Ожидайте проверки.")
}

func senderLabel(u *tele.User) string {
	if u == nil {
		return "unknown"
	}
	if u.Username != "" {
		escaped, err := format.EscapeMarkdown(u.Username, format.MarkdownV1, "")
		if err != nil {
			escaped = u.Username
		}
		return "@" + escaped
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		return strconv.FormatInt(u.ID, 10)
	}
	return name
}
