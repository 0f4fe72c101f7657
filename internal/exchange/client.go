package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
	"github.com/BenSmith123/crypto-analyser/pkg/utils"
)

// CryptoClient - клиент Crypto.com Exchange v2 API.
// Все приватные запросы подписываются HMAC-SHA256 по схеме
// method + id + apiKey + отсортированные-параметры + nonce.
// При выключенной торговле create-order не отправляется вовсе
type CryptoClient struct {
	apiKey         string
	apiSecret      string
	baseURL        string
	client         *http.Client
	logger         *utils.Logger
	tradingEnabled bool
	requestID      int64
	nowMilli       func() int64
}

type apiRequest struct {
	ID     int64                  `json:"id"`
	Method string                 `json:"method"`
	APIKey string                 `json:"api_key,omitempty"`
	Params map[string]interface{} `json:"params,omitempty"`
	Nonce  int64                  `json:"nonce"`
	Sig    string                 `json:"sig,omitempty"`
}

type TickerResponse struct {
	Code   int    `json:"code"`
	Method string `json:"method"`
	Result struct {
		Data []struct {
			Instrument string  `json:"i"`
			BestBid    float64 `json:"b"`
			BestAsk    float64 `json:"k"`
		} `json:"data"`
	} `json:"result"`
}

type AccountSummaryResponse struct {
	Code   int `json:"code"`
	Result struct {
		Accounts []struct {
			Currency  string  `json:"currency"`
			Balance   float64 `json:"balance"`
			Available float64 `json:"available"`
		} `json:"accounts"`
	} `json:"result"`
}

type CreateOrderResponse struct {
	Code   int `json:"code"`
	Result struct {
		OrderID   string `json:"order_id"`
		ClientOID string `json:"client_oid"`
	} `json:"result"`
}

type OrderDetailResponse struct {
	Code   int `json:"code"`
	Result struct {
		OrderInfo struct {
			OrderID         string  `json:"order_id"`
			Status          string  `json:"status"`
			Side            string  `json:"side"`
			AvgPrice        float64 `json:"avg_price"`
			Quantity        float64 `json:"quantity"`
			CumulativeValue float64 `json:"cumulative_value"`
			CreateTime      int64   `json:"create_time"`
		} `json:"order_info"`
	} `json:"result"`
}

type CandlestickResponse struct {
	Code   int `json:"code"`
	Result struct {
		Data []struct {
			Time  int64   `json:"t"`
			Open  float64 `json:"o"`
			High  float64 `json:"h"`
			Low   float64 `json:"l"`
			Close float64 `json:"c"`
		} `json:"data"`
	} `json:"result"`
}

func NewCryptoClient(apiKey, apiSecret, baseURL string, tradingEnabled bool, logger *utils.Logger) *CryptoClient {
	return &CryptoClient{
		apiKey:         apiKey,
		apiSecret:      apiSecret,
		baseURL:        baseURL,
		client:         &http.Client{Timeout: 30 * time.Second},
		logger:         logger,
		tradingEnabled: tradingEnabled,
		nowMilli:       func() int64 { return time.Now().UnixMilli() },
	}
}

// GetQuotes возвращает лучшие bid/ask по всем отслеживаемым валютам.
// Все тикеры биржи запрашиваются одним вызовом и фильтруются по парам
// с расчётной валютой
func (c *CryptoClient) GetQuotes(currencies []string) (map[string]domain.Quote, error) {
	body, err := c.get("public/get-ticker", "")
	if err != nil {
		return nil, err
	}

	var tickerResp TickerResponse
	if err := json.Unmarshal(body, &tickerResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticker response: %w", err)
	}

	if tickerResp.Code != 0 {
		return nil, fmt.Errorf("%w: get-ticker returned code %d", domain.ErrExchangeAPI, tickerResp.Code)
	}

	wanted := make(map[string]string, len(currencies))
	for _, currency := range currencies {
		if currency == domain.SettlementCurrency {
			continue
		}
		wanted[instrumentName(currency)] = currency
	}

	quotes := make(map[string]domain.Quote, len(wanted))
	for _, ticker := range tickerResp.Result.Data {
		currency, ok := wanted[ticker.Instrument]
		if !ok {
			continue
		}
		quotes[currency] = domain.Quote{
			BestBid: ticker.BestBid,
			BestAsk: ticker.BestAsk,
		}
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: no tickers found for the targeted currencies", domain.ErrExchangeAPI)
	}

	return quotes, nil
}

// GetBalances получает балансы всех валют аккаунта
func (c *CryptoClient) GetBalances() (map[string]domain.Balance, error) {
	body, err := c.post("private/get-account-summary", nil)
	if err != nil {
		return nil, err
	}

	var summaryResp AccountSummaryResponse
	if err := json.Unmarshal(body, &summaryResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account summary: %w", err)
	}

	if summaryResp.Code != 0 {
		return nil, fmt.Errorf("%w: get-account-summary returned code %d", domain.ErrExchangeAPI, summaryResp.Code)
	}

	balances := make(map[string]domain.Balance, len(summaryResp.Result.Accounts))
	for _, account := range summaryResp.Result.Accounts {
		if account.Balance == 0 && account.Available == 0 {
			continue
		}
		balances[account.Currency] = domain.Balance{
			Balance:   account.Balance,
			Available: account.Available,
		}
	}

	return balances, nil
}

// PlaceBuyOrder размещает рыночный ордер на покупку на указанную сумму USDT.
// Пустой orderID означает, что торговля выключена и ордер не отправлялся
func (c *CryptoClient) PlaceBuyOrder(currency string, notionalUSDT float64) (string, error) {
	if !c.tradingEnabled {
		c.logger.Warn("Trading is disabled, skipping BUY %s for %.2f USDT", currency, notionalUSDT)
		return "", nil
	}

	params := map[string]interface{}{
		"instrument_name": instrumentName(currency),
		"side":            domain.SideBuy,
		"type":            domain.CryptoOrderTypeMkt,
		"notional":        notionalUSDT,
		"client_oid":      uuid.NewString(),
	}

	return c.createOrder(params)
}

// PlaceSellOrder размещает рыночный ордер на продажу указанного количества
func (c *CryptoClient) PlaceSellOrder(currency string, quantity float64) (string, error) {
	if !c.tradingEnabled {
		c.logger.Warn("Trading is disabled, skipping SELL %v %s", quantity, currency)
		return "", nil
	}

	params := map[string]interface{}{
		"instrument_name": instrumentName(currency),
		"side":            domain.SideSell,
		"type":            domain.CryptoOrderTypeMkt,
		"quantity":        quantity,
		"client_oid":      uuid.NewString(),
	}

	return c.createOrder(params)
}

func (c *CryptoClient) createOrder(params map[string]interface{}) (string, error) {
	body, err := c.post("private/create-order", params)
	if err != nil {
		return "", err
	}

	var orderResp CreateOrderResponse
	if err := json.Unmarshal(body, &orderResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal create-order response: %w", err)
	}

	if orderResp.Code != 0 {
		return "", fmt.Errorf("%w: create-order returned code %d", domain.ErrExchangeAPI, orderResp.Code)
	}

	return orderResp.Result.OrderID, nil
}

// GetOrderDetail получает статус и цену исполнения ордера
func (c *CryptoClient) GetOrderDetail(orderID string) (*domain.OrderDetail, error) {
	params := map[string]interface{}{
		"order_id": orderID,
	}

	body, err := c.post("private/get-order-detail", params)
	if err != nil {
		return nil, err
	}

	var detailResp OrderDetailResponse
	if err := json.Unmarshal(body, &detailResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order detail: %w", err)
	}

	if detailResp.Code != 0 {
		return nil, fmt.Errorf("%w: get-order-detail returned code %d", domain.ErrExchangeAPI, detailResp.Code)
	}

	info := detailResp.Result.OrderInfo

	return &domain.OrderDetail{
		OrderID:   info.OrderID,
		Status:    info.Status,
		AvgPrice:  info.AvgPrice,
		Raw:       string(body),
		CreatedAt: time.UnixMilli(info.CreateTime),
	}, nil
}

// IsTrendContinuing проверяет по минутным свечам, продолжает ли цена
// двигаться в указанном направлении. Тренд считается продолжающимся,
// только если последние закрытия строго монотонны
func (c *CryptoClient) IsTrendContinuing(currency string, direction domain.TrendDirection) (bool, error) {
	query := fmt.Sprintf("instrument_name=%s&timeframe=%s", instrumentName(currency), domain.CandleTimeframe1m)

	body, err := c.get("public/get-candlestick", query)
	if err != nil {
		return false, err
	}

	var candleResp CandlestickResponse
	if err := json.Unmarshal(body, &candleResp); err != nil {
		return false, fmt.Errorf("failed to unmarshal candlestick response: %w", err)
	}

	if candleResp.Code != 0 {
		return false, fmt.Errorf("%w: get-candlestick returned code %d", domain.ErrExchangeAPI, candleResp.Code)
	}

	candles := candleResp.Result.Data
	if len(candles) < trendWindow {
		return false, nil
	}

	closes := make([]float64, trendWindow)
	for i := 0; i < trendWindow; i++ {
		closes[i] = candles[len(candles)-trendWindow+i].Close
	}

	for i := 1; i < len(closes); i++ {
		switch direction {
		case domain.TrendUp:
			if closes[i] <= closes[i-1] {
				return false, nil
			}
		case domain.TrendDown:
			if closes[i] >= closes[i-1] {
				return false, nil
			}
		}
	}

	return true, nil
}

// окно подтверждения тренда в минутных свечах
const trendWindow = 3

func (c *CryptoClient) get(method, query string) ([]byte, error) {
	url := c.baseURL + method
	if query != "" {
		url += "?" + query
	}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req)
}

func (c *CryptoClient) post(method string, params map[string]interface{}) ([]byte, error) {
	c.requestID++

	request := apiRequest{
		ID:     c.requestID,
		Method: method,
		APIKey: c.apiKey,
		Params: params,
		Nonce:  c.nowMilli(),
	}
	request.Sig = c.sign(request)

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+method, strings.NewReader(string(jsonData)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *CryptoClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// sign подписывает приватный запрос: HMAC-SHA256 от
// method + id + apiKey + params(ключи по алфавиту, key+value подряд) + nonce
func (c *CryptoClient) sign(request apiRequest) string {
	keys := make([]string, 0, len(request.Params))
	for key := range request.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var paramString strings.Builder
	for _, key := range keys {
		paramString.WriteString(key)
		paramString.WriteString(paramValue(request.Params[key]))
	}

	message := fmt.Sprintf("%s%d%s%s%d", request.Method, request.ID, c.apiKey, paramString.String(), request.Nonce)

	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// paramValue печатает значение параметра так же, как его сериализует JSON
func paramValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(data)
	}
}

// instrumentName собирает имя торговой пары с расчётной валютой
func instrumentName(currency string) string {
	return currency + domain.InstrumentSeparator + domain.SettlementCurrency
}
