package router

import (
	"time"

	tg "github.com/m3rciful/psfastpay/core/telegram"
	"github.com/m3rciful/psfastpay/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MessageOptions controls routing of plain message updates.
type MessageOptions struct {
	// Photo handles incoming photo messages (payment proofs and the like).
	Photo           tele.HandlerFunc
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc

	// Authorize and OnAdminReject guard admin-only commands dispatched
	// through bare text, same as CommandRoutes guards the slash form.
	Authorize     middleware.Authorizer
	OnAdminReject tele.HandlerFunc
}

// MessageRoutes builds handlers for text, photo, and document updates.
// Text that matches a registered command is dispatched to it; everything
// else falls back to the registry fallback or the provided handlers.
func MessageRoutes(reg *tg.Registry, opts MessageOptions) []tg.Route {
	adminGuard := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		Authorize: opts.Authorize,
		OnReject:  opts.OnAdminReject,
	})

	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				h := cmd.Handler
				if cmd.AdminOnly {
					h = adminGuard(h)
				}
				return handleWithSummary(c, name, start, "", "", func() error {
					return h(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	photoHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.Photo != nil {
			return handleWithSummary(c, "photo", start, "", "", func() error {
				return opts.Photo(c)
			})
		}
		logHandlerSummary(c, "photo", start, "skip", "ok", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownDocument != nil {
			return handleWithSummary(c, "unexpected_document", start, "", "", func() error {
				return opts.UnknownDocument(c)
			})
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(textHandler)),
		},
		{
			Endpoint: tele.OnPhoto,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(photoHandler)),
		},
		{
			Endpoint: tele.OnDocument,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(docHandler)),
		},
	}
}
