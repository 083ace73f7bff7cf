// Package app assembles the bot: infrastructure bootstrap, services, and
// the Telegram run options consumed by the shared runner.
package app

import (
	"context"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/psfastpay/core/bootstrap"
	coretelegram "github.com/m3rciful/psfastpay/core/telegram"
	"github.com/m3rciful/psfastpay/core/telegram/router"
	tgsender "github.com/m3rciful/psfastpay/core/telegram/sender"
	"github.com/m3rciful/psfastpay/internal/bot"
	"github.com/m3rciful/psfastpay/internal/catalog"
	"github.com/m3rciful/psfastpay/internal/config"
	"github.com/m3rciful/psfastpay/internal/conversation"
	"github.com/m3rciful/psfastpay/internal/ledger"
	"github.com/m3rciful/psfastpay/internal/ledger/postgres"
	"github.com/m3rciful/psfastpay/internal/pricing"
)

// App carries everything needed to run the bot.
type App struct {
	cfg      *config.Config
	sessions *conversation.Store
	handlers *bot.Bot
	disp     *tgsender.Dispatcher
}

// Bootstrap initializes the logger, database, migrations, catalog, and the
// services the handlers run on.
func Bootstrap(cfg *config.Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("app: catalog load failed: %w", err)
	}

	orders := ledger.NewService(postgres.NewRepository(res.DB))
	sessions := conversation.NewStore(cat, pricing.PlaceholderRUB)
	dispatcher := tgsender.NewDispatcher(tgsender.Options{})

	handlers := bot.New(bot.Options{
		Catalog:    cat,
		Sessions:   sessions,
		Orders:     orders,
		Dispatcher: dispatcher,
		AdminIDs:   cfg.Core.Telegram.AdminIDs,
		PayeeCard:  cfg.Payments.PayeeCard,
	})

	return &App{
		cfg:      cfg,
		sessions: sessions,
		handlers: handlers,
		disp:     dispatcher,
	}, nil
}

// TelegramRunOptions builds the run options for the shared Telegram runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.handlers.Register(reg)

	authorize := a.cfg.Core.Telegram.IsAdmin

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		Authorize:     authorize,
		OnAdminReject: bot.AdminReject,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: a.handlers.UnknownCallback(),
	}))
	routes = append(routes, router.MessageRoutes(reg, router.MessageOptions{
		Photo:           a.handlers.HandlePhoto,
		UnknownText:     a.handlers.UnknownText(),
		UnknownDocument: a.handlers.UnknownDocument(),
		Authorize:       authorize,
		OnAdminReject:   bot.AdminReject,
	})...)

	idleTTL := time.Duration(a.cfg.Session.IdleTTLMinutes) * time.Minute

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Dispatcher:  a.disp,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), onRateLimited),
		Routes:      routes,
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			a.sessions.StartJanitor(ctx, idleTTL)
			return nil
		},
	}, nil
}

func onRateLimited(c tele.Context) error {
	return c.Respond(&tele.CallbackResponse{Text: "Слишком часто, подождите немного."})
}
