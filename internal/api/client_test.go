package api

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// testSecret is a valid base64 string usable as an API secret in tests.
var testSecret = base64.StdEncoding.EncodeToString([]byte("test signing key material"))

func TestClient_PrivateSignsAndDecodes(t *testing.T) {
	var gotKey, gotSign, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("API-Key")
		gotSign = r.Header.Get("API-Sign")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":[],"result":{"ZUSD":"1200.5000","XXBT":"0.2500000000"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", testSecret,
		WithTimeout(5*time.Second),
		WithRateLimit(rate.Inf, 1),
	)

	balances, err := client.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("API-Key header = %q, want %q", gotKey, "test-key")
	}
	if gotSign == "" {
		t.Error("API-Sign header is empty")
	}
	if gotBody == "" || gotBody[:6] != "nonce=" {
		t.Errorf("request body = %q, want nonce-first form encoding", gotBody)
	}

	if len(balances) != 2 {
		t.Fatalf("balances len = %d, want 2", len(balances))
	}
	if balances["ZUSD"] != "1200.5000" {
		t.Errorf("ZUSD = %q, want %q", balances["ZUSD"], "1200.5000")
	}
}

func TestClient_VenueErrorSurfacesTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":["EAPI:Invalid key"]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key", testSecret, WithRateLimit(rate.Inf, 1))

	_, err := client.Balance(context.Background())
	var invalidKey *InvalidKeyError
	if !errors.As(err, &invalidKey) {
		t.Fatalf("err = %v, want InvalidKeyError", err)
	}
}

func TestClient_TransportErrorTyped(t *testing.T) {
	// Server closed before the call: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "key", testSecret,
		WithTimeout(time.Second),
		WithRateLimit(rate.Inf, 1),
	)

	_, err := client.Balance(context.Background())
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}

func TestClient_HTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", testSecret, WithRateLimit(rate.Inf, 1))

	_, err := client.Balance(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusBadGateway)
	}
}

func TestClient_OpenOrdersPreservesEmptyVersusMissing(t *testing.T) {
	tests := []struct {
		name     string
		result   string
		wantErr  error
		wantMiss bool
	}{
		{name: "present empty", result: `{"open":{}}`, wantErr: ErrNoItems},
		{name: "absent", result: `{"count":0}`, wantMiss: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":[],"result":` + tt.result + `}`))
			}))
			defer server.Close()

			client := NewClient(server.URL, "key", testSecret, WithRateLimit(rate.Inf, 1))
			res, err := client.OpenOrders(context.Background())
			if err != nil {
				t.Fatalf("OpenOrders failed: %v", err)
			}

			checkErr := NonEmptyMap("open", res.Open)
			if tt.wantMiss {
				var missing *MissingFieldError
				if !errors.As(checkErr, &missing) {
					t.Errorf("err = %v, want MissingFieldError", checkErr)
				}
				return
			}
			if !errors.Is(checkErr, tt.wantErr) {
				t.Errorf("err = %v, want %v", checkErr, tt.wantErr)
			}
		})
	}
}

func TestClient_AssetPairsDiscriminators(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":[],"result":{
			"XXBTZUSD":{"altname":"XBTUSD","wsname":"XBT/USD","aclass_base":"currency","base":"XXBT","aclass_quote":"currency","quote":"ZUSD","pair_decimals":1,"lot_decimals":8,"lot_multiplier":1,"fees":[[0,0.26]],"fees_maker":[[0,0.16]],"fee_volume_currency":"ZUSD","margin_call":80,"margin_stop":40,"ordermin":"0.0001","costmin":"0.5","tick_size":"0.1","status":"online"},
			"ZUSD":{"aclass":"currency","altname":"USD","decimals":4,"display_decimals":2,"collateral_value":1.0,"status":"enabled"}
		}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", WithRateLimit(rate.Inf, 1))
	pairs, err := client.AssetPairs(context.Background())
	if err != nil {
		t.Fatalf("AssetPairs failed: %v", err)
	}

	pair := pairs["XXBTZUSD"]
	if pair.AclassBase == nil || *pair.AclassBase != "currency" {
		t.Errorf("XXBTZUSD.AclassBase = %v, want currency", pair.AclassBase)
	}
	if pair.Aclass != nil {
		t.Errorf("XXBTZUSD.Aclass = %v, want nil", pair.Aclass)
	}

	asset := pairs["ZUSD"]
	if asset.Aclass == nil || *asset.Aclass != "currency" {
		t.Errorf("ZUSD.Aclass = %v, want currency", asset.Aclass)
	}
	if asset.AclassBase != nil {
		t.Errorf("ZUSD.AclassBase = %v, want nil", asset.AclassBase)
	}
}
