package ledger

import "errors"

var (
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInsufficientFunds     = errors.New("insufficient funds: minimum balance requirement not met")
	ErrWithdrawalsNotAllowed = errors.New("withdrawals are not allowed from savings accounts")
	ErrBelowMinimumBalance   = errors.New("opening balance is below the account minimum")
	ErrUnknownAccountType    = errors.New("unknown account type")
	ErrUnknownCustomerKind   = errors.New("unknown customer kind")
	ErrUnknownRole           = errors.New("unknown user role")
	ErrInvalidAccount        = errors.New("invalid account")
	ErrInvalidCustomer       = errors.New("invalid customer")
	ErrInvalidUser           = errors.New("invalid user")
	ErrSameAccount           = errors.New("source and destination accounts are the same")
	ErrAccountOwnerMismatch  = errors.New("account belongs to a different customer")

	ErrCustomerNotFound     = errors.New("customer not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateCustomer    = errors.New("customer already exists")
	ErrDuplicateAccount     = errors.New("account already exists")
	ErrDuplicateAccountType = errors.New("customer already holds an account of this type")
	ErrDuplicateUser        = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)
