package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "R$ 0,00"},
		{in: "10", want: "R$ 10,00"},
		{in: "9.9", want: "R$ 9,90"},
		{in: "999.999", want: "R$ 1.000,00"},
		{in: "1234.56", want: "R$ 1.234,56"},
		{in: "1234567.8", want: "R$ 1.234.567,80"},
		{in: "-15.5", want: "-R$ 15,50"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBRL(decimal.RequireFromString(tt.in)))
		})
	}
}
