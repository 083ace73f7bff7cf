package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/psfastpay/core/telegram/helpers"
	"github.com/m3rciful/psfastpay/internal/ledger"
)

// handleListOrders replies with the most recent orders, newest first.
// Optional argument overrides the listing limit.
func (b *Bot) handleListOrders(c tele.Context) error {
	limit := 0
	if args := c.Args(); len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return c.Reply("Использование: /orders [limit]")
		}
		limit = n
	}

	ctx := tghelpers.BuildContext(c)
	orders, err := b.orders.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return c.Reply("Заказов нет")
	}

	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, o.Summary())
	}
	return c.Reply(strings.Join(lines, "\n"))
}

// handleConfirm marks an order as paid and notifies its owner exactly once.
func (b *Bot) handleConfirm(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("Использование: /confirm <order_id>")
	}
	orderID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply("Использование: /confirm <order_id>")
	}

	ctx := tghelpers.BuildContext(c)
	order, err := b.orders.ConfirmPaid(ctx, orderID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return c.Reply(fmt.Sprintf("Заказ #%d не найден.", orderID))
		}
		return fmt.Errorf("confirm order %d: %w", orderID, err)
	}

	if nerr := b.notifier(c).NotifyUser(ctx, order.UserID, fmt.Sprintf(
		"Заказ #%d оплачен и будет доставлен в ближайшее время.", order.ID)); nerr != nil {
		// Delivery is best effort; the confirmation itself already happened.
		_ = nerr
	}

	return c.Reply(fmt.Sprintf("Заказ #%d помечен как оплаченный.", order.ID))
}

// handleAddCode stores a new gift code: /addcode <code> <denomination> <region>.
func (b *Bot) handleAddCode(c tele.Context) error {
	args := c.Args()
	if len(args) < 3 {
		return c.Reply("Использование: /addcode <code> <denomination> <region>")
	}
	code, denomination := args[0], args[1]
	region := strings.Join(args[2:], " ")
	if !b.catalog.HasRegion(region) {
		return c.Reply(msgRegionMissing)
	}

	ctx := tghelpers.BuildContext(c)
	if _, err := b.orders.AddCode(ctx, code, denomination, region); err != nil {
		if errors.Is(err, ledger.ErrCodeExists) {
			return c.Reply("Такой код уже есть в инвентаре.")
		}
		return fmt.Errorf("add code: %w", err)
	}
	return c.Reply(fmt.Sprintf("Код %s (%s, %s) добавлен.", code, denomination, region))
}

// handleListCodes replies with the unused gift code inventory.
func (b *Bot) handleListCodes(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	codes, err := b.orders.AvailableCodes(ctx)
	if err != nil {
		return fmt.Errorf("list codes: %w", err)
	}
	if len(codes) == 0 {
		return c.Reply("Свободных кодов нет")
	}
	lines := make([]string, 0, len(codes))
	for _, gc := range codes {
		lines = append(lines, fmt.Sprintf("%s — %s — %s", gc.Code, gc.Denomination, gc.Region))
	}
	return c.Reply(strings.Join(lines, "\n"))
}
