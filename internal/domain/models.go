package domain

import "time"

// Configuration представляет инвестиционную конфигурацию пользователя.
// Хранится в БД как единый JSON-документ и возвращается движком
// в обновлённом виде после каждого прохода
type Configuration struct {
	ID                 string                     `json:"id" validate:"required"`
	IsPaused           bool                       `json:"isPaused"`
	PausedReason       string                     `json:"pausedReason,omitempty"`
	CurrenciesTargeted []string                   `json:"currenciesTargeted" validate:"required,min=1,dive,required"`
	Records            map[string]*CurrencyRecord `json:"records" validate:"required,dive,required"`
	Options            Options                    `json:"options"`
}

// Options опции отображения и логирования
type Options struct {
	SimpleLogs bool `json:"simpleLogs"`
}

// CurrencyRecord представляет состояние одной отслеживаемой валюты.
// Ровно один из якорей LastBuyPrice/LastSellPrice установлен (или ни одного
// до первой покупки); IsHolding отражает какой именно
type CurrencyRecord struct {
	LastBuyPrice   *float64   `json:"lastBuyPrice,omitempty"`
	LastSellPrice  *float64   `json:"lastSellPrice,omitempty"`
	IsHolding      bool       `json:"isHolding"`
	OrderDate      string     `json:"orderDate,omitempty"`
	Timestamp      int64      `json:"timestamp,omitempty"`
	Thresholds     Thresholds `json:"thresholds"`
	LimitUSDT      *float64   `json:"limitUSDT,omitempty"`
	ForceBuy       bool       `json:"forceBuy,omitempty"`
	ForceSell      bool       `json:"forceSell,omitempty"`
	IsAtLoss       bool       `json:"isAtLoss,omitempty"`
	BreakEvenPrice *float64   `json:"breakEvenPrice,omitempty"`
	PauseAfterSell bool       `json:"pauseAfterSell,omitempty"`
	IsPaused       bool       `json:"isPaused,omitempty"`
	PausedReason   string     `json:"pausedReason,omitempty"`
}

// Thresholds пороги принятия решений в процентах.
// SellPercentage - минимальный рост против последней покупки для продажи,
// BuyPercentage - минимальное падение против последней продажи для покупки
// (со знаком: -1 означает покупку при падении на 1%)
type Thresholds struct {
	SellPercentage     float64  `json:"sellPercentage"`
	BuyPercentage      float64  `json:"buyPercentage"`
	WarningPercentage  *float64 `json:"warningPercentage,omitempty"`
	StopLossPercentage *float64 `json:"stopLossPercentage,omitempty"`
}

// Quote лучшие цены покупки/продажи за один проход
type Quote struct {
	BestBid float64
	BestAsk float64
}

// Balance снапшот баланса валюты на бирже
type Balance struct {
	Available float64
	Balance   float64
}

// OrderDetail детали размещённого ордера, возвращаемые биржей.
// Raw хранит необработанный ответ API для аудита
type OrderDetail struct {
	OrderID   string
	Currency  string
	Side      string
	Status    string
	AvgPrice  float64
	Raw       string
	CreatedAt time.Time
}

// OrderResult итог одной сделки за проход - то, что видит пользователь
type OrderResult struct {
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	ValuePlaced float64 `json:"valuePlaced"`
	ValueFilled float64 `json:"valueFilled,omitempty"`
	OrderID     string  `json:"orderId"`
	Difference  string  `json:"difference,omitempty"`
	Quantity    string  `json:"quantity"`
	Summary     string  `json:"summary"`
	Date        string  `json:"date"`
}

// TrendDirection направление краткосрочного тренда
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
)
