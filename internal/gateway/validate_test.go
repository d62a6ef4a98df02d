package gateway

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"brokergate/internal/broker"
)

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		price    string
		quantity int
		wantErr  bool
	}{
		{"valid shanghai", "sh600000", "10.5", 100, false},
		{"valid shenzhen", "sz000001", "3.21", 200, false},
		{"valid beijing", "bj430047", "8", 100, false},
		{"missing prefix", "600000", "10.5", 100, true},
		{"uppercase prefix", "SH600000", "10.5", 100, true},
		{"short code", "sh60000", "10.5", 100, true},
		{"long code", "sh6000001", "10.5", 100, true},
		{"empty symbol", "", "10.5", 100, true},
		{"zero price", "sh600000", "0", 100, true},
		{"negative price", "sh600000", "-1", 100, true},
		{"zero quantity", "sh600000", "10.5", 0, true},
		{"negative quantity", "sh600000", "10.5", -100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			err := validateOrder(tt.symbol, price, tt.quantity)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCancel(t *testing.T) {
	assert.Error(t, validateCancel(""))
	assert.NoError(t, validateCancel("80001"))
}

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name    string
		creds   broker.Credentials
		wantErr bool
	}{
		{"yh without credentials", broker.Credentials{Kind: "yh"}, false},
		{"yh with exe path", broker.Credentials{Kind: "yh", ExePath: `C:\yh\xiadan.exe`}, false},
		{"ht with credentials", broker.Credentials{Kind: "ht", Username: "u", Password: "p"}, false},
		{"ht missing password", broker.Credentials{Kind: "ht", Username: "u"}, true},
		{"yjb missing both", broker.Credentials{Kind: "yjb"}, true},
		{"xq with credentials", broker.Credentials{Kind: "xq", Username: "u", Password: "p"}, false},
		{"unknown kind", broker.Credentials{Kind: "gf", Username: "u", Password: "p"}, true},
		{"empty kind", broker.Credentials{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateLogin(tt.creds)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
