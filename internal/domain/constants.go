package domain

// Trade sides
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Order statuses
const (
	StatusPlaced   = "PLACED"
	StatusActive   = "ACTIVE"
	StatusFilled   = "FILLED"
	StatusCanceled = "CANCELED"
	StatusUnknown  = "UNKNOWN"
)

// Settlement currency - все покупки/продажи идут против неё
const SettlementCurrency = "USDT"

// Stop-loss recovery: после стоп-лосс продажи пороги ужимаются,
// чтобы форсировать обратный выкуп и безубыточную продажу
const (
	// AtLossBuyPercentage порог обратного выкупа: покупаем когда цена
	// восстановилась на столько процентов выше цены стоп-лосс продажи
	AtLossBuyPercentage = 0.5

	// AtLossStopLossPercentage жёсткий допуск на повторное падение
	// после обратного выкупа
	AtLossStopLossPercentage = -1.5

	// BreakEvenMultiplier цена безубытка: 1% сверх исходной цены покупки
	// покрывает потери стоп-лосса и стоимость повторного входа
	BreakEvenMultiplier = 1.01
)

// DateTimeFormat формат дат в записях и ордерах
const DateTimeFormat = "02/01/2006 15:04:05"

// DefaultTimezone часовой пояс дат по умолчанию
const DefaultTimezone = "Pacific/Auckland"

// Причины паузы записи/конфигурации
const (
	PausedReasonBreakEven = "break-even sell completed"
	PausedReasonFailure   = "pass failed"
)

// Crypto.com API
const (
	CryptoAPIBaseURL    = "https://api.crypto.com/v2/"
	CryptoOrderTypeMkt  = "MARKET"
	CandleTimeframe1m   = "1m"
	InstrumentSeparator = "_"
)
