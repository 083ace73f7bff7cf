package bot

import (
	"bytes"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/psfastpay/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/psfastpay/core/telegram/helpers"
	"github.com/m3rciful/psfastpay/core/telegram/keyboard"
	"github.com/m3rciful/psfastpay/internal/conversation"
	"github.com/m3rciful/psfastpay/internal/ledger"
	"github.com/m3rciful/psfastpay/internal/qr"
)

// Callback keys. Button payloads carry the variable part (product id,
// variant label, region, payment method).
const (
	cbMainMenu     = "back_main"
	cbCatalog      = "catalog"
	cbProduct      = "product"
	cbVariant      = "variant"
	cbRegion       = "region"
	cbToPayment    = "to_payment"
	cbPay          = "pay"
	cbPaymentsInfo = "payments_info"
	cbSettings     = "settings"
	cbHelp         = "help"
)

const (
	msgAccessDenied   = "Доступ запрещён"
	msgActionInvalid  = "Действие недоступно, начните заново через /start"
	msgProductMissing = "Товар не найден"
	msgVariantMissing = "Опция не найдена"
	msgRegionMissing  = "Регион не найден"
)

func mainMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "🛒 Каталог/Купить", Unique: cbCatalog},
		{Text: "💰 Оплата (Инфо)", Unique: cbPaymentsInfo},
		{Text: "⚙️ Настройки/Заказы", Unique: cbSettings},
		{Text: "❓ Помощь/Поддержка", Unique: cbHelp},
	})
}

func (b *Bot) handleStart(c tele.Context) error {
	// /start cancels whatever flow was in progress.
	b.sessions.Cancel(c.Sender().ID)
	return c.Send("Привет! Я — PSFastPayBot. Выбери действие:", mainMenuMarkup())
}

func (b *Bot) cbBackMain(c tele.Context) error {
	b.sessions.Cancel(c.Sender().ID)
	return c.EditOrSend("Выбери действие:", mainMenuMarkup())
}

func (b *Bot) cbCatalog(c tele.Context) error {
	var btns []keyboard.InlineBtn
	for _, p := range b.catalog.Products() {
		btns = append(btns, keyboard.InlineBtn{Text: p.Title, Unique: cbProduct, Data: p.ID})
	}
	btns = append(btns, keyboard.InlineBtn{Text: "Назад", Unique: cbMainMenu})
	return c.EditOrSend("Каталог товаров:", keyboard.InlineButtons(btns))
}

func (b *Bot) cbProduct(c tele.Context) error {
	productID := callbacks.CallbackPayload(c)
	product, err := b.sessions.SelectProduct(c.Sender().ID, productID)
	if err != nil {
		return b.rejectFlowError(c, err)
	}

	var btns []keyboard.InlineBtn
	for _, v := range product.Variants {
		btns = append(btns, keyboard.InlineBtn{Text: v, Unique: cbVariant, Data: v})
	}
	btns = append(btns, keyboard.InlineBtn{Text: "Отмена", Unique: cbMainMenu})
	text := fmt.Sprintf("Выбрано: %s\nВыберите опцию:", product.Title)
	return c.EditOrSend(text, keyboard.InlineButtons(btns))
}

func (b *Bot) cbVariant(c tele.Context) error {
	variant := callbacks.CallbackPayload(c)
	if err := b.sessions.SelectVariant(c.Sender().ID, variant); err != nil {
		return b.rejectFlowError(c, err)
	}

	var btns []keyboard.InlineBtn
	for _, r := range b.catalog.Regions() {
		btns = append(btns, keyboard.InlineBtn{Text: r, Unique: cbRegion, Data: r})
	}
	btns = append(btns, keyboard.InlineBtn{Text: "Отмена", Unique: cbMainMenu})
	return c.EditOrSend("Выберите регион PSN-аккаунта:", keyboard.InlineButtons(btns))
}

func (b *Bot) cbRegion(c tele.Context) error {
	region := callbacks.CallbackPayload(c)
	sel, err := b.sessions.SelectRegion(c.Sender().ID, region)
	if err != nil {
		return b.rejectFlowError(c, err)
	}

	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Перейти к оплате", Unique: cbToPayment},
		{Text: "Отмена", Unique: cbMainMenu},
	})
	text := fmt.Sprintf("Сводка заказа:\n\nТовар: %s (%s)\nРегион: %s\nЦена: %s",
		sel.ProductTitle, sel.Variant, sel.Region, sel.PriceDisplay)
	return c.EditOrSend(text, markup)
}

func (b *Bot) cbToPayment(c tele.Context) error {
	if err := b.sessions.Proceed(c.Sender().ID); err != nil {
		return b.rejectFlowError(c, err)
	}

	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Сбер/Tinkoff (ручной)", Unique: cbPay, Data: string(ledger.MethodBank)},
		{Text: "USDT (крипто)", Unique: cbPay, Data: string(ledger.MethodCryptoUSDT)},
		{Text: "Telegram Stars/Invoices", Unique: cbPay, Data: string(ledger.MethodTelegramInvoice)},
		{Text: "TON", Unique: cbPay, Data: string(ledger.MethodTON)},
		{Text: "Отмена", Unique: cbMainMenu},
	})
	return c.EditOrSend("Выберите способ оплаты:", markup)
}

func (b *Bot) cbPayMethod(c tele.Context) error {
	user := c.Sender()
	method := ledger.PaymentMethod(callbacks.CallbackPayload(c))

	draft, err := b.sessions.ChoosePayment(user.ID, user.Username, method)
	if err != nil {
		return b.rejectFlowError(c, err)
	}

	ctx := tghelpers.BuildContext(c)
	orderID, err := b.orders.Place(ctx, draft)
	if err != nil {
		_ = c.Send("Не удалось создать заказ, попробуйте ещё раз.")
		return fmt.Errorf("place order: %w", err)
	}

	if method == ledger.MethodBank {
		return b.sendBankInstructions(c, orderID, draft.PriceDisplay)
	}

	return tghelpers.SendText(c, fmt.Sprintf(
		"Создан заказ #%d. Инструкция для метода %s будет выслана менеджером.",
		orderID, method))
}

func (b *Bot) sendBankInstructions(c tele.Context, orderID int64, amount string) error {
	payload := fmt.Sprintf("PAYTO:PS Fast Pay;CARD:%s;AMOUNT:%s", b.payeeCard, amount)
	png, err := qr.RenderPaymentQR(payload)
	if err != nil {
		return fmt.Errorf("render payment qr: %w", err)
	}

	caption := fmt.Sprintf(
		"Оплатите %s на карту %s\nПосле оплаты пришлите скриншот с номером заказа #%d",
		amount, b.payeeCard, orderID)
	photo := &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(png)),
		Caption: caption,
	}
	if err := tghelpers.SendPhoto(c, photo); err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf("Номер заказа: #%d", orderID))
}

func (b *Bot) cbPaymentsInfo(c tele.Context) error {
	text := "Способы оплаты:\n" +
		"— Сбер/Tinkoff: перевод на карту, подтверждение скриншотом\n" +
		"— USDT, TON: реквизиты пришлёт менеджер\n" +
		"— Telegram Stars/Invoices: счёт в чате"
	return c.EditOrSend(text, keyboard.InlineButtons(
		[]keyboard.InlineBtn{{Text: "Назад", Unique: cbMainMenu}}))
}

func (b *Bot) cbSettings(c tele.Context) error {
	text := "Статус заказа сообщит менеджер после проверки оплаты.\n" +
		"Для нового заказа откройте каталог."
	return c.EditOrSend(text, keyboard.InlineButtons(
		[]keyboard.InlineBtn{{Text: "Назад", Unique: cbMainMenu}}))
}

func (b *Bot) cbHelp(c tele.Context) error {
	text := "Поддержка: напишите менеджеру и укажите номер заказа (#id)."
	return c.EditOrSend(text, keyboard.InlineButtons(
		[]keyboard.InlineBtn{{Text: "Назад", Unique: cbMainMenu}}))
}

// rejectFlowError maps conversation guard failures to user-facing rejections.
// The session is untouched in every branch; nothing here is fatal.
func (b *Bot) rejectFlowError(c tele.Context, err error) error {
	switch {
	case errors.Is(err, conversation.ErrUnknownProduct):
		return c.Respond(&tele.CallbackResponse{Text: msgProductMissing})
	case errors.Is(err, conversation.ErrUnknownVariant):
		return c.Respond(&tele.CallbackResponse{Text: msgVariantMissing})
	case errors.Is(err, conversation.ErrUnknownRegion):
		return c.Respond(&tele.CallbackResponse{Text: msgRegionMissing})
	case errors.Is(err, conversation.ErrInvalidTransition),
		errors.Is(err, conversation.ErrUnknownMethod):
		return c.Respond(&tele.CallbackResponse{Text: msgActionInvalid})
	}
	return err
}
