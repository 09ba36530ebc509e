// Package utils carries the request-boundary parsing helpers: hex address
// validation and integral amount parsing.
package utils

import (
	"math/big"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// AddressValidator is registered on the gin binding engine under the
// "address" tag.
var AddressValidator validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return addressPattern.MatchString(value)
}

// ParseAddress converts a request hex string to a checked address.
func ParseAddress(value string) (common.Address, error) {
	if !addressPattern.MatchString(value) {
		return common.Address{}, errors.Errorf("malformed address %q", value)
	}
	return common.HexToAddress(value), nil
}

// ParseAmount converts a request amount to base units. Amounts travel as
// decimal strings and must be non-negative integers.
func ParseAmount(value string) (*big.Int, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed amount %q", value)
	}
	if !d.IsInteger() || d.IsNegative() {
		return nil, errors.Errorf("amount %q is not a non-negative integer", value)
	}
	return d.BigInt(), nil
}

// ParseTokenID converts a request token id, a non-negative decimal string.
func ParseTokenID(value string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(value, 10)
	if !ok || id.Sign() < 0 {
		return nil, errors.Errorf("malformed token id %q", value)
	}
	return id, nil
}
