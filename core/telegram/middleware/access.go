package middleware

import tele "gopkg.in/telebot.v4"

// Authorizer decides whether a user may invoke admin-only handlers.
type Authorizer func(userID int64) bool

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	Authorize Authorizer
	OnReject  tele.HandlerFunc
}

// AdminOnlyMiddleware ensures that only authorized users can invoke downstream handlers.
// With a nil Authorize predicate every caller is rejected.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.Authorize == nil || !opts.Authorize(c.Sender().ID) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
