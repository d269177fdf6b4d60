package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vinigdesouza/api-financial/internal/models"
)

func TestGetCurrencyPrice(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		want       string
		wantErr    bool
	}{
		{
			name:       "parses ask price",
			statusCode: http.StatusOK,
			body:       `{"USDBRL": {"ask": "5.60", "bid": "5.58"}}`,
			want:       "5.6",
		},
		{
			name:       "missing pair in response",
			statusCode: http.StatusOK,
			body:       `{"EURBRL": {"ask": "6.10"}}`,
			wantErr:    true,
		},
		{
			name:       "non-numeric ask",
			statusCode: http.StatusOK,
			body:       `{"USDBRL": {"ask": "n/a"}}`,
			wantErr:    true,
		},
		{
			name:       "upstream error status",
			statusCode: http.StatusBadGateway,
			body:       `{}`,
			wantErr:    true,
		},
		{
			name:       "malformed body",
			statusCode: http.StatusOK,
			body:       `not json`,
			wantErr:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/USD-BRL" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gateway := NewHTTPPriceGateway(server.URL, testLogger())
			price, err := gateway.GetCurrencyPrice(context.Background(), models.CurrencyUSD, models.CurrencyBRL)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got price %s", price.String())
				}
				if !errors.Is(err, models.ErrPriceLookupFailed) {
					t.Errorf("expected ErrPriceLookupFailed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if price.String() != tt.want {
				t.Errorf("expected price %s, got %s", tt.want, price.String())
			}
		})
	}
}

func TestGetCurrencyPriceUnreachableHost(t *testing.T) {
	gateway := NewHTTPPriceGateway("http://127.0.0.1:1", testLogger())
	_, err := gateway.GetCurrencyPrice(context.Background(), models.CurrencyUSD, models.CurrencyBRL)
	if !errors.Is(err, models.ErrPriceLookupFailed) {
		t.Errorf("expected ErrPriceLookupFailed, got %v", err)
	}
}
