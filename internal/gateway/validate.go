package gateway

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"brokergate/internal/broker"
)

// Request validation is pure: no I/O, no session interaction. A
// failure here must short-circuit before the collaborator is touched.

// Symbols are exchange-prefixed A-share tickers, e.g. "sh600000".
var symbolPattern = regexp.MustCompile(`^(sh|sz|bj)[0-9]{6}$`)

func validateOrder(symbol string, price decimal.Decimal, quantity int) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("invalid symbol %q: expected an exchange-prefixed ticker like sh600000", symbol)
	}
	if !price.IsPositive() {
		return errors.New("price must be positive")
	}
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

func validateCancel(orderID string) error {
	if orderID == "" {
		return errors.New("order_id is required")
	}
	return nil
}

func validateLogin(creds broker.Credentials) error {
	if !broker.KindSupported(creds.Kind) {
		return fmt.Errorf("unsupported broker kind %q", creds.Kind)
	}
	if broker.KindNeedsUserPass(creds.Kind) && (creds.Username == "" || creds.Password == "") {
		return fmt.Errorf("broker kind %q requires username and password", creds.Kind)
	}
	return nil
}
