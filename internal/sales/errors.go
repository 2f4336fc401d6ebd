package sales

import "errors"

var (
	ErrMissingCustomer = errors.New("customer name is required")
	ErrInvalidPayment  = errors.New("invalid payment method")
	ErrEmptyItems      = errors.New("sale must contain at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be at least 1")
	ErrInvalidPrice    = errors.New("item price must be greater than zero")
	ErrNegativeCost    = errors.New("costs must not be negative")
)
