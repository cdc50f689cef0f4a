package domain

import "errors"

var (
	ErrInvalidSelection       = errors.New("invalid option selection")
	ErrInvalidDiscount        = errors.New("invalid discount")
	ErrEmptyCart              = errors.New("cart is empty, nothing to checkout")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrPersistenceUnavailable = errors.New("order store unavailable")

	ErrLineNotFound     = errors.New("line not found in cart")
	ErrItemUnavailable  = errors.New("menu item is not available")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateOrder   = errors.New("order number already exists")
	ErrCartNotFound     = errors.New("cart not found")
	ErrInvalidMenuItem  = errors.New("invalid menu item")
	ErrCartCheckedOut   = errors.New("cart was already checked out")
	ErrQuantityLimit    = errors.New("line quantity limit exceeded")
	ErrCartNotCleared   = errors.New("order placed but stored cart was not cleared")
)
