// Package errcode defines the error surface of the HTTP API: stable numeric
// codes with human-readable messages.
package errcode

import "fmt"

// Err pairs a stable code with a message. It satisfies error so it can flow
// through ordinary error returns.
type Err struct {
	code int
	msg  string
}

func NewErr(code int, msg string) *Err {
	return &Err{code: code, msg: msg}
}

// NewCustomErr tags an ad-hoc message with the generic custom code.
func NewCustomErr(msg string) *Err {
	return NewErr(CodeCustom, msg)
}

func (e *Err) Code() int {
	return e.code
}

func (e *Err) Error() string {
	return fmt.Sprintf("[%d] %s", e.code, e.msg)
}

func (e *Err) Msg() string {
	return e.msg
}

const (
	CodeOK            = 200
	CodeCustom        = 7000
	CodeInvalidParams = 7001
	CodeNotFound      = 7002
	CodeNoPermission  = 7003
	CodeInsufficient  = 7004
	CodePricing       = 7005
	CodeExpired       = 7006
	CodeReentrant     = 7007
	CodeUnexpected    = 7500
)

var (
	ErrInvalidParams       = NewErr(CodeInvalidParams, "invalid request parameters")
	ErrOfferNotFound       = NewErr(CodeNotFound, "offer not found or already closed")
	ErrNotAuthorized       = NewErr(CodeNoPermission, "caller lacks the required authority")
	ErrInsufficientFunds   = NewErr(CodeInsufficient, "insufficient funds, allowance or attached value")
	ErrPricingInconsistent = NewErr(CodePricing, "commission and royalty exceed the trade amount")
	ErrOfferExpired        = NewErr(CodeExpired, "offer expired")
	ErrReentrantCall       = NewErr(CodeReentrant, "settlement re-entered from a transfer leg")
	ErrUnexpected          = NewErr(CodeUnexpected, "unexpected internal error")
)
