package app

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/ports"
)

// newValidator returns a validator that understands decimal fields, so tags
// such as gte=0 apply to prices and fees. An unset optional decimal validates
// as empty.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, optional.Option[decimal.Decimal]{})
	return v
}

func decimalValue(field reflect.Value) interface{} {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return d.InexactFloat64()
	case optional.Option[decimal.Decimal]:
		if d.IsSome() {
			return d.Unwrap().InexactFloat64()
		}
	}
	return nil
}

func invalid(what string, err error) error {
	return fmt.Errorf("invalid %s: %w: %w", what, ports.ErrInvalidRequest, err)
}
