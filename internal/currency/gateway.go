package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

// HTTPPriceGateway fetches currency quotes from the external quote API. The
// endpoint is GET {host}/{FROM}-{TO} and the ask price lives under the
// "FROMTO" key of the response object.
type HTTPPriceGateway struct {
	host   string
	client *http.Client
	log    *logrus.Logger
}

func NewHTTPPriceGateway(host string, log *logrus.Logger) *HTTPPriceGateway {
	return &HTTPPriceGateway{
		host:   host,
		client: &http.Client{Timeout: 20 * time.Second},
		log:    log,
	}
}

type quote struct {
	Ask string `json:"ask"`
}

func (g *HTTPPriceGateway) GetCurrencyPrice(ctx context.Context, from, to models.Currency) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s-%s", g.host, from, to)
	g.log.WithField("url", url).Debug("fetching currency price")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrPriceLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrPriceLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: unexpected status %d", models.ErrPriceLookupFailed, resp.StatusCode)
	}

	var payload map[string]quote
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrPriceLookupFailed, err)
	}

	entry, ok := payload[string(from)+string(to)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: quote for %s-%s missing from response", models.ErrPriceLookupFailed, from, to)
	}

	price, err := decimal.NewFromString(entry.Ask)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid ask price %q", models.ErrPriceLookupFailed, entry.Ask)
	}
	return price, nil
}
