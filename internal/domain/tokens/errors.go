package tokens

import "errors"

// ErrInsufficientBalance indicates a debit was refused because the
// owner's balance is too low.
var ErrInsufficientBalance = errors.New("insufficient token balance")
