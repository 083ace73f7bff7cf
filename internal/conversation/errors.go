package conversation

import "errors"

var (
	// ErrInvalidTransition means the event is not legal in the user's
	// current state. Callers recover silently; the session is untouched.
	ErrInvalidTransition = errors.New("conversation: invalid transition")
	// ErrUnknownProduct means the product id is not in the catalog.
	ErrUnknownProduct = errors.New("conversation: unknown product")
	// ErrUnknownVariant means the variant is not declared for the product.
	ErrUnknownVariant = errors.New("conversation: unknown variant")
	// ErrUnknownRegion means the region is not in the known region set.
	ErrUnknownRegion = errors.New("conversation: unknown region")
	// ErrUnknownMethod means the payment method is not supported.
	ErrUnknownMethod = errors.New("conversation: unknown payment method")
)
