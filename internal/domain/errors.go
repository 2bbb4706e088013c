package domain

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInsufficientBalance
	KindGateway
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindGateway:
		return "gateway"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

var (
	ErrValidation     = newError(KindValidation, "invalid input")
	ErrAmountMismatch = newError(KindValidation, "paid amount does not match order")

	ErrUserNotFound       = newError(KindNotFound, "user not found")
	ErrProductNotFound    = newError(KindNotFound, "product not found or disabled")
	ErrOrderNotFound      = newError(KindNotFound, "order not found")
	ErrCodeNotFound       = newError(KindNotFound, "activation code not found")
	ErrRecordNotFound     = newError(KindNotFound, "withdraw record not found")
	ErrInvalidCredentials = newError(KindNotFound, "invalid credentials")

	ErrAlreadyMember   = newError(KindConflict, "user is already a member")
	ErrCodeUsed        = newError(KindConflict, "activation code already used")
	ErrCodeInactive    = newError(KindConflict, "activation code is no longer valid")
	ErrAlreadyHandled  = newError(KindConflict, "withdraw record already handled")
	ErrOrderNotPayable = newError(KindConflict, "order is not pending payment")

	ErrInsufficientBalance = newError(KindInsufficientBalance, "insufficient balance")

	ErrGatewayInitiation   = newError(KindGateway, "payment initiation failed")
	ErrGatewayVerification = newError(KindGateway, "payment notification verification failed")

	ErrInternal = newError(KindInternal, "internal error")
)

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
