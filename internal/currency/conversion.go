package currency

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

// PriceGateway looks up the price of one unit of the source currency in the
// target currency.
type PriceGateway interface {
	GetCurrencyPrice(ctx context.Context, from, to models.Currency) (decimal.Decimal, error)
}

// ConversionService converts amounts between currencies. No caching, no
// retries; one quote per conversion.
type ConversionService struct {
	gateway PriceGateway
	log     *logrus.Logger
}

func NewConversionService(gateway PriceGateway, log *logrus.Logger) *ConversionService {
	return &ConversionService{gateway: gateway, log: log}
}

// Convert multiplies amount by the quoted price and rounds half away from
// zero to two decimal places.
func (s *ConversionService) Convert(ctx context.Context, amount decimal.Decimal, from, to models.Currency) (decimal.Decimal, error) {
	s.log.WithFields(logrus.Fields{"from": from, "to": to}).Info("converting currency")

	price, err := s.gateway.GetCurrencyPrice(ctx, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error fetching currency price: %w", err)
	}

	converted := amount.Mul(price).Round(2)
	s.log.WithField("converted", converted.String()).Debug("currency converted")
	return converted, nil
}
