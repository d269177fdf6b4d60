package currency

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

type mockPriceGateway struct {
	priceFn func(ctx context.Context, from, to models.Currency) (decimal.Decimal, error)
}

func (m *mockPriceGateway) GetCurrencyPrice(ctx context.Context, from, to models.Currency) (decimal.Decimal, error) {
	return m.priceFn(ctx, from, to)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		price   decimal.Decimal
		want    string
		wantErr bool
	}{
		{
			name:   "usd deposit at quoted price",
			amount: decimal.NewFromInt(100), price: decimal.RequireFromString("5.60"),
			want: "560",
		},
		{
			name:   "rounds half up to two decimals",
			amount: decimal.RequireFromString("10.01"), price: decimal.RequireFromString("5.555"),
			want: "55.61", // 55.60555... -> 55.61
		},
		{
			name:   "rounds down below the midpoint",
			amount: decimal.RequireFromString("1.004"), price: decimal.NewFromInt(1),
			want: "1",
		},
		{
			name:   "no precision loss on exact cents",
			amount: decimal.RequireFromString("0.10"), price: decimal.NewFromInt(3),
			want: "0.3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &mockPriceGateway{
				priceFn: func(ctx context.Context, from, to models.Currency) (decimal.Decimal, error) {
					return tt.price, nil
				},
			}
			svc := NewConversionService(gateway, testLogger())
			got, err := svc.Convert(context.Background(), tt.amount, models.CurrencyUSD, models.CurrencyBRL)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.String())
			}
		})
	}
}

func TestConvertPriceLookupFailure(t *testing.T) {
	gateway := &mockPriceGateway{
		priceFn: func(ctx context.Context, from, to models.Currency) (decimal.Decimal, error) {
			return decimal.Zero, models.ErrPriceLookupFailed
		},
	}
	svc := NewConversionService(gateway, testLogger())
	_, err := svc.Convert(context.Background(), decimal.NewFromInt(10), models.CurrencyEUR, models.CurrencyBRL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, models.ErrPriceLookupFailed) {
		t.Errorf("expected ErrPriceLookupFailed, got %v", err)
	}
}
