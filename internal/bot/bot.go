// Package bot wires the order conversation, the ledger, and the admin
// surface onto Telegram commands and callback buttons.
package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/psfastpay/core/telegram"
	"github.com/m3rciful/psfastpay/core/telegram/commands"
	"github.com/m3rciful/psfastpay/core/telegram/sender"
	"github.com/m3rciful/psfastpay/internal/catalog"
	"github.com/m3rciful/psfastpay/internal/conversation"
	"github.com/m3rciful/psfastpay/internal/ledger"
	"github.com/m3rciful/psfastpay/internal/notify"
)

// Options carries the collaborators the bot handlers need.
type Options struct {
	Catalog    *catalog.Catalog
	Sessions   *conversation.Store
	Orders     *ledger.Service
	Dispatcher *sender.Dispatcher
	AdminIDs   []int64
	PayeeCard  string
}

// Bot holds handler state. It is safe for concurrent use: all mutable state
// lives in the session store and the ledger.
type Bot struct {
	catalog    *catalog.Catalog
	sessions   *conversation.Store
	orders     *ledger.Service
	dispatcher *sender.Dispatcher
	admins     []int64
	payeeCard  string
}

// New constructs the bot handler set.
func New(opts Options) *Bot {
	return &Bot{
		catalog:    opts.Catalog,
		sessions:   opts.Sessions,
		orders:     opts.Orders,
		dispatcher: opts.Dispatcher,
		admins:     append([]int64(nil), opts.AdminIDs...),
		payeeCard:  opts.PayeeCard,
	}
}

// notifier builds the outbound notifier around the live bot instance.
func (b *Bot) notifier(c tele.Context) notify.Notifier {
	return notify.NewTelegram(c.Bot(), b.dispatcher, b.admins)
}

// Register wires all commands and callbacks into the registry.
func (b *Bot) Register(reg *telegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/orders", commands.Command{
		Handler:     b.handleListOrders,
		Description: "Последние заказы",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/confirm", commands.Command{
		Handler:     b.handleConfirm,
		Description: "Подтвердить оплату заказа",
		AdminOnly:   true,
		Hidden:      true,
		Aliases:     []string{"paid"},
	})
	reg.RegisterCommand("/addcode", commands.Command{
		Handler:     b.handleAddCode,
		Description: "Добавить код в инвентарь",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/codes", commands.Command{
		Handler:     b.handleListCodes,
		Description: "Свободные коды",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = reg.RegisterCallback(cbMainMenu, b.cbBackMain)
	_ = reg.RegisterCallback(cbCatalog, b.cbCatalog)
	_ = reg.RegisterCallback(cbProduct, b.cbProduct)
	_ = reg.RegisterCallback(cbVariant, b.cbVariant)
	_ = reg.RegisterCallback(cbRegion, b.cbRegion)
	_ = reg.RegisterCallback(cbToPayment, b.cbToPayment)
	_ = reg.RegisterCallback(cbPay, b.cbPayMethod)
	_ = reg.RegisterCallback(cbPaymentsInfo, b.cbPaymentsInfo)
	_ = reg.RegisterCallback(cbSettings, b.cbSettings)
	_ = reg.RegisterCallback(cbHelp, b.cbHelp)

	reg.SetCallbackNotFound(b.UnknownCallback())
	reg.SetTextFallback(b.UnknownText())
}

// AdminReject is the handler used when a non-admin invokes an admin command.
func AdminReject(c tele.Context) error {
	return c.Reply(msgAccessDenied)
}
