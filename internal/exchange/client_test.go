package exchange

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
	"github.com/BenSmith123/crypto-analyser/pkg/utils"
)

func testLogger() *utils.Logger {
	return utils.NewLogger("error")
}

func TestSign(t *testing.T) {
	client := NewCryptoClient("api-key", "secret", domain.CryptoAPIBaseURL, false, testLogger())

	tests := []struct {
		name    string
		request apiRequest
		want    string
	}{
		{
			name: "single string param",
			request: apiRequest{
				ID:     1,
				Method: "private/get-order-detail",
				Params: map[string]interface{}{"order_id": "123"},
				Nonce:  1600000000000,
			},
			want: "541fc5d039f01faeb9225c129a8b4a181502659a0380443340e5ec78818ba7ac",
		},
		{
			name: "params are concatenated in key order",
			request: apiRequest{
				ID:     2,
				Method: "private/create-order",
				Params: map[string]interface{}{
					"instrument_name": "DOGE_USDT",
					"side":            domain.SideBuy,
					"type":            domain.CryptoOrderTypeMkt,
					"notional":        float64(8),
					"client_oid":      "abc-123",
				},
				Nonce: 1600000000001,
			},
			want: "8d78653de2e6aedbb519f87f601c2c3a3f422cbc8b3050f4ac087094ba6e7411",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.sign(tt.request)
			if got != tt.want {
				t.Errorf("sign() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/get-ticker" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"code":0,"method":"public/get-ticker","result":{"data":[
			{"i":"DOGE_USDT","b":0.4,"k":0.3},
			{"i":"BTC_USDT","b":50000,"k":50001},
			{"i":"ETH_BTC","b":0.07,"k":0.071}
		]}}`)
	}))
	defer server.Close()

	client := NewCryptoClient("k", "s", server.URL+"/", false, testLogger())

	quotes, err := client.GetQuotes([]string{"DOGE", "BTC", domain.SettlementCurrency})
	if err != nil {
		t.Fatalf("GetQuotes() error = %v", err)
	}

	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}
	if quotes["DOGE"].BestBid != 0.4 || quotes["DOGE"].BestAsk != 0.3 {
		t.Errorf("DOGE quote = %+v", quotes["DOGE"])
	}
	if quotes["BTC"].BestBid != 50000 {
		t.Errorf("BTC quote = %+v", quotes["BTC"])
	}
}

func TestGetQuotesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":10002,"result":{"data":[]}}`)
	}))
	defer server.Close()

	client := NewCryptoClient("k", "s", server.URL+"/", false, testLogger())

	_, err := client.GetQuotes([]string{"DOGE"})
	if err == nil {
		t.Fatal("expected an error for a non-zero response code")
	}
}

func TestGetBalances(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request apiRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &request); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		if request.Method != "private/get-account-summary" {
			t.Errorf("method = %s", request.Method)
		}
		if request.APIKey != "k" || request.Sig == "" || request.Nonce == 0 {
			t.Error("request is not signed")
		}

		io.WriteString(w, `{"code":0,"result":{"accounts":[
			{"currency":"DOGE","balance":31,"available":31},
			{"currency":"USDT","balance":8.8377054,"available":8.8377054},
			{"currency":"BTC","balance":0,"available":0}
		]}}`)
	}))
	defer server.Close()

	client := NewCryptoClient("k", "s", server.URL+"/", false, testLogger())

	balances, err := client.GetBalances()
	if err != nil {
		t.Fatalf("GetBalances() error = %v", err)
	}

	if len(balances) != 2 {
		t.Fatalf("got %d balances, want 2 (zero balances dropped)", len(balances))
	}
	if balances["DOGE"].Available != 31 {
		t.Errorf("DOGE balance = %+v", balances["DOGE"])
	}
	if balances[domain.SettlementCurrency].Available != 8.8377054 {
		t.Errorf("USDT balance = %+v", balances[domain.SettlementCurrency])
	}
}

func TestPlaceOrdersDisabledTrading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected while trading is disabled")
	}))
	defer server.Close()

	client := NewCryptoClient("k", "s", server.URL+"/", false, testLogger())

	orderID, err := client.PlaceBuyOrder("DOGE", 8)
	if err != nil || orderID != "" {
		t.Errorf("PlaceBuyOrder() = (%q, %v), want empty no-op", orderID, err)
	}

	orderID, err = client.PlaceSellOrder("DOGE", 31)
	if err != nil || orderID != "" {
		t.Errorf("PlaceSellOrder() = (%q, %v), want empty no-op", orderID, err)
	}
}

func TestPlaceBuyOrder(t *testing.T) {
	var request apiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &request); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		io.WriteString(w, `{"code":0,"result":{"order_id":"337843775021233500","client_oid":"abc"}}`)
	}))
	defer server.Close()

	client := NewCryptoClient("k", "s", server.URL+"/", true, testLogger())

	orderID, err := client.PlaceBuyOrder("DOGE", 8)
	if err != nil {
		t.Fatalf("PlaceBuyOrder() error = %v", err)
	}
	if orderID != "337843775021233500" {
		t.Errorf("orderID = %q", orderID)
	}

	if request.Method != "private/create-order" {
		t.Errorf("method = %s", request.Method)
	}
	if request.Params["instrument_name"] != "DOGE_USDT" {
		t.Errorf("instrument_name = %v", request.Params["instrument_name"])
	}
	if request.Params["side"] != domain.SideBuy {
		t.Errorf("side = %v", request.Params["side"])
	}
	if request.Params["notional"] != float64(8) {
		t.Errorf("notional = %v", request.Params["notional"])
	}
	if request.Params["client_oid"] == "" {
		t.Error("client_oid should be set")
	}
}

func TestGetOrderDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":0,"result":{"order_info":{
			"order_id":"337843775021233500","status":"FILLED","side":"BUY",
			"avg_price":12.4,"quantity":0.6451,"cumulative_value":8,
			"create_time":1626100205000
		}}}`)
	}))
	defer server.Close()

	client := NewCryptoClient("k", "s", server.URL+"/", true, testLogger())

	detail, err := client.GetOrderDetail("337843775021233500")
	if err != nil {
		t.Fatalf("GetOrderDetail() error = %v", err)
	}

	if detail.Status != domain.StatusFilled {
		t.Errorf("Status = %s", detail.Status)
	}
	if detail.AvgPrice != 12.4 {
		t.Errorf("AvgPrice = %v", detail.AvgPrice)
	}
	if detail.Raw == "" {
		t.Error("Raw response should be preserved for the audit trail")
	}
	if detail.CreatedAt.UnixMilli() != 1626100205000 {
		t.Errorf("CreatedAt = %v", detail.CreatedAt)
	}
}

func TestIsTrendContinuing(t *testing.T) {
	tests := []struct {
		name      string
		closes    string
		direction domain.TrendDirection
		want      bool
	}{
		{
			name:      "strictly falling closes confirm a downtrend",
			closes:    `{"t":1,"c":0.32},{"t":2,"c":0.31},{"t":3,"c":0.30}`,
			direction: domain.TrendDown,
			want:      true,
		},
		{
			name:      "flat close breaks a downtrend",
			closes:    `{"t":1,"c":0.32},{"t":2,"c":0.31},{"t":3,"c":0.31}`,
			direction: domain.TrendDown,
			want:      false,
		},
		{
			name:      "strictly rising closes confirm an uptrend",
			closes:    `{"t":1,"c":0.30},{"t":2,"c":0.31},{"t":3,"c":0.32}`,
			direction: domain.TrendUp,
			want:      true,
		},
		{
			name:      "only the last candles matter",
			closes:    `{"t":1,"c":0.50},{"t":2,"c":0.30},{"t":3,"c":0.31},{"t":4,"c":0.32}`,
			direction: domain.TrendUp,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"code":0,"result":{"data":[`+tt.closes+`]}}`)
			}))
			defer server.Close()

			client := NewCryptoClient("k", "s", server.URL+"/", false, testLogger())

			got, err := client.IsTrendContinuing("DOGE", tt.direction)
			if err != nil {
				t.Fatalf("IsTrendContinuing() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsTrendContinuing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTrendContinuingTooFewCandles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":0,"result":{"data":[{"t":1,"c":0.32},{"t":2,"c":0.31}]}}`)
	}))
	defer server.Close()

	client := NewCryptoClient("k", "s", server.URL+"/", false, testLogger())

	got, err := client.IsTrendContinuing("DOGE", domain.TrendDown)
	if err != nil {
		t.Fatalf("IsTrendContinuing() error = %v", err)
	}
	if got {
		t.Error("two candles are not enough to confirm a trend")
	}
}
