package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
	"github.com/BenSmith123/crypto-analyser/internal/runlog"
	"github.com/BenSmith123/crypto-analyser/pkg/utils"
)

// MarketData поставщик рыночных данных на один проход
type MarketData interface {
	// GetQuotes возвращает лучшие bid/ask по всем отслеживаемым валютам
	// одним запросом; расчётная валюта (USDT) не включается
	GetQuotes(currencies []string) (map[string]domain.Quote, error)

	// IsTrendContinuing сообщает, продолжает ли валюта двигаться
	// в указанном направлении на коротком окне
	IsTrendContinuing(currency string, direction domain.TrendDirection) (bool, error)
}

// Account поставщик балансов аккаунта
type Account interface {
	GetBalances() (map[string]domain.Balance, error)
}

// OrderPlacer размещение ордеров и чтение их статуса.
// Пустой orderID означает no-op (торговля глобально выключена)
type OrderPlacer interface {
	PlaceBuyOrder(currency string, notionalUSDT float64) (orderID string, err error)
	PlaceSellOrder(currency string, quantity float64) (orderID string, err error)
	GetOrderDetail(orderID string) (*domain.OrderDetail, error)

	// RoundQuantity округляет количество вниз до торгуемой точности валюты
	RoundQuantity(currency string, quantity float64) float64
}

// TradeStore сохраняет сырые ордера для аудита
type TradeStore interface {
	SaveOrder(detail *domain.OrderDetail) error
}

// Trader - торговый движок: за один проход принимает не более одного
// решения по каждой отслеживаемой валюте, применяя пороги, ограничители
// и подтверждение тренда. Проход строго последовательный
type Trader struct {
	market  MarketData
	account Account
	orders  OrderPlacer
	trades  TradeStore

	runLog    *runlog.Buffer
	logger    *utils.Logger
	alertFunc func(message string)

	location     *time.Location
	now          func() time.Time
	sleep        func(d time.Duration)
	confirmDelay time.Duration
	retryDelay   time.Duration
}

func NewTrader(
	market MarketData,
	account Account,
	orders OrderPlacer,
	trades TradeStore,
	runLog *runlog.Buffer,
	logger *utils.Logger,
	alertFunc func(message string),
	location *time.Location,
) *Trader {
	if location == nil {
		location = time.UTC
	}
	return &Trader{
		market:       market,
		account:      account,
		orders:       orders,
		trades:       trades,
		runLog:       runLog,
		logger:       logger,
		alertFunc:    alertFunc,
		location:     location,
		now:          time.Now,
		sleep:        time.Sleep,
		confirmDelay: confirmFirstDelay,
		retryDelay:   confirmRetryDelay,
	}
}

// MakeTrades выполняет один проход по всем отслеживаемым валютам.
// Возвращает обновлённую конфигурацию и список размещённых ордеров.
// Ошибки поставщиков не перехватываются - они всплывают к верхнеуровневому
// обработчику, который ставит конфигурацию на паузу
func (t *Trader) MakeTrades(cfg *domain.Configuration) (*domain.Configuration, []domain.OrderResult, error) {
	if cfg.IsPaused {
		t.logger.Info("Configuration %s is paused, skipping pass", cfg.ID)
		t.runLog.Append("Trading is paused, no action taken")
		return cfg, nil, nil
	}

	quotes, err := t.market.GetQuotes(cfg.CurrenciesTargeted)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get quotes: %w", err)
	}

	balances, err := t.account.GetBalances()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get balances: %w", err)
	}
	balancesStale := false

	var ordersPlaced []domain.OrderResult

	for _, currency := range cfg.CurrenciesTargeted {
		if currency == domain.SettlementCurrency {
			continue
		}

		record := cfg.Records[currency]
		if record == nil {
			t.runLog.Append("No record found for %s, skipping", currency)
			continue
		}

		if record.IsPaused {
			t.runLog.Append("%s is paused (%s), skipping", currency, record.PausedReason)
			continue
		}

		// после исполненного ордера балансы устарели - перечитываем,
		// чтобы два решения в одном проходе не потратили один и тот же USDT
		if balancesStale {
			balances, err = t.account.GetBalances()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to refresh balances: %w", err)
			}
			balancesStale = false
		}

		usdt := balances[domain.SettlementCurrency]

		// дробные остатки USDT игнорируем, чтобы округление не давало
		// ложного "можно покупать"
		canBuy := math.Floor(usdt.Available) >= 1
		canSell := hasCryptoBalance(balances)

		if !canBuy && !canSell {
			t.runLog.Append("No USDT or crypto balances available, stopping the pass")
			t.alert("No crypto or USDT balances available to trade")
			break
		}

		// покупаем только целые USDT
		amountUSDT := math.Floor(usdt.Available)
		if record.LimitUSDT != nil {
			amountUSDT = math.Min(*record.LimitUSDT, amountUSDT)
		}

		quote, ok := quotes[currency]
		if !ok {
			t.runLog.Append("No market quote for %s, skipping", currency)
			continue
		}

		initialBuy := record.LastBuyPrice == nil && record.LastSellPrice == nil && canBuy

		var result *domain.OrderResult

		switch {
		case record.LastSellPrice != nil || record.ForceBuy || initialBuy:
			if !canBuy {
				t.runLog.Append("No whole USDT available to buy %s, skipping", currency)
				break
			}
			result, err = t.evaluateBuy(cfg, currency, record, quote, amountUSDT, initialBuy)

		case record.LastBuyPrice != nil:
			result, err = t.evaluateSell(cfg, currency, record, quote, balances[currency])

		default:
			// записи без якорей, не годной для первой покупки, быть не должно -
			// проблема данных, не торговли
			t.logger.Warn("Record %s has no price anchors and cannot be bought, skipping", currency)
			t.runLog.Append("%s has no buy or sell price anchor and cannot be bought, skipping", currency)
		}

		if err != nil {
			return nil, nil, err
		}

		if result != nil {
			ordersPlaced = append(ordersPlaced, *result)
			balancesStale = true
		}
	}

	return cfg, ordersPlaced, nil
}

// evaluateBuy решает и исполняет покупку одной валюты
func (t *Trader) evaluateBuy(cfg *domain.Configuration, currency string, record *domain.CurrencyRecord, quote domain.Quote, amountUSDT float64, initialBuy bool) (*domain.OrderResult, error) {
	forced := record.ForceBuy
	ask := quote.BestAsk

	if !forced && !initialBuy {
		diff := PercentChange(ask, *record.LastSellPrice)

		if record.IsAtLoss {
			// после стоп-лосса ждём восстановления цены, а не падения
			if diff < record.Thresholds.BuyPercentage {
				t.runLog.Append("%s is at a loss and has not recovered yet (%s)", currency, formatDiff(diff))
				return nil, nil
			}
		} else if diff > record.Thresholds.BuyPercentage {
			t.runLog.Append("%s", FormatPriceLog(currency, "sold", *record.LastSellPrice, ask, diff, cfg.Options.SimpleLogs))
			return nil, nil
		}
	}

	if !forced {
		falling, err := t.market.IsTrendContinuing(currency, domain.TrendDown)
		if err != nil {
			return nil, fmt.Errorf("trend check for %s failed: %w", currency, err)
		}
		if falling {
			t.runLog.Append("%s is still dropping, waiting before buying back in", currency)
			return nil, nil
		}
	}

	orderID, err := t.orders.PlaceBuyOrder(currency, amountUSDT)
	if err != nil {
		return nil, fmt.Errorf("failed to place buy order for %s: %w", currency, err)
	}

	// пустой id - ордер не отправлялся (торговля выключена):
	// состояние записи остаётся нетронутым
	if orderID == "" {
		t.runLog.Append("Buy order for %s was not submitted, leaving the record unchanged", currency)
		return nil, nil
	}

	settledPrice, resolved := t.confirmOrder(orderID, currency, domain.SideBuy)

	price := ask
	if resolved {
		price = settledPrice
	}

	UpdateRecord(cfg, currency, price, true, 0, t.now().In(t.location))

	// ручная покупка в loss-состоянии снимает его безусловно:
	// оператор знает лучше, чем триггер восстановления
	if forced && record.IsAtLoss {
		record.IsAtLoss = false
		record.BreakEvenPrice = nil
		record.PauseAfterSell = false
	}

	result := FormatOrder(domain.SideBuy, currency, amountUSDT, ask, settledPrice, 0, orderID, t.now().In(t.location))
	t.runLog.Append("%s", result.Summary)
	return &result, nil
}

// evaluateSell решает и исполняет продажу одной валюты, включая
// stop-loss и break-even ветки
func (t *Trader) evaluateSell(cfg *domain.Configuration, currency string, record *domain.CurrencyRecord, quote domain.Quote, balance domain.Balance) (*domain.OrderResult, error) {
	bid := quote.BestBid
	lastBuyPrice := *record.LastBuyPrice

	diff := PercentChange(bid, lastBuyPrice)

	sellAtLoss := record.Thresholds.StopLossPercentage != nil && diff < *record.Thresholds.StopLossPercentage
	forceSell := sellAtLoss || record.ForceSell

	if diff < record.Thresholds.SellPercentage && !forceSell {
		if record.Thresholds.WarningPercentage != nil && diff < *record.Thresholds.WarningPercentage {
			t.runLog.Append("Warning: %s is down %s against its last buy price", currency, formatDiff(diff))
		}
		t.runLog.Append("%s", FormatPriceLog(currency, "bought", lastBuyPrice, bid, diff, cfg.Options.SimpleLogs))
		return nil, nil
	}

	if !forceSell {
		rising, err := t.market.IsTrendContinuing(currency, domain.TrendUp)
		if err != nil {
			return nil, fmt.Errorf("trend check for %s failed: %w", currency, err)
		}
		if rising {
			t.runLog.Append("%s is still rising, holding off selling", currency)
			return nil, nil
		}
	}

	quantity := t.orders.RoundQuantity(currency, balance.Available)
	if quantity <= 0 {
		t.runLog.Append("No tradable %s balance to sell, skipping", currency)
		return nil, nil
	}

	orderID, err := t.orders.PlaceSellOrder(currency, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to place sell order for %s: %w", currency, err)
	}

	if orderID == "" {
		t.runLog.Append("Sell order for %s was not submitted, leaving the record unchanged", currency)
		return nil, nil
	}

	settledPrice, resolved := t.confirmOrder(orderID, currency, domain.SideSell)

	price := bid
	if resolved {
		price = settledPrice
	}

	wasPauseAfterSell := record.PauseAfterSell
	wasAtLoss := record.IsAtLoss

	UpdateRecord(cfg, currency, price, false, quantity*price, t.now().In(t.location))

	if sellAtLoss {
		// ужимаем пороги, чтобы форсировать обратный выкуп и восстановление
		record.Thresholds.BuyPercentage = domain.AtLossBuyPercentage
		stopLoss := domain.AtLossStopLossPercentage
		record.Thresholds.StopLossPercentage = &stopLoss

		if !wasAtLoss {
			breakEven := lastBuyPrice * domain.BreakEvenMultiplier
			record.BreakEvenPrice = &breakEven
			record.IsAtLoss = true
			record.PauseAfterSell = true
		}
		if record.BreakEvenPrice != nil {
			// следующая продажа по этому порогу ровно покрывает убыток
			// плюс стоимость повторного входа
			record.Thresholds.SellPercentage = PercentChange(*record.BreakEvenPrice, price)
		}

		t.runLog.Append("Stop-loss triggered for %s at %s, selling at a loss", currency, formatDiff(diff))
		t.alert(fmt.Sprintf("Stop-loss triggered for %s (%s)", currency, formatDiff(diff)))
	} else if wasPauseAfterSell {
		// безубыток достигнут - цикл этой валюты завершён до вмешательства
		// оператора
		record.IsPaused = true
		record.PausedReason = domain.PausedReasonBreakEven
		record.IsAtLoss = false
		record.BreakEvenPrice = nil
		record.PauseAfterSell = false

		t.runLog.Append("%s reached its break-even sell, pausing the record", currency)
		t.alert(fmt.Sprintf("%s recovered its stop-loss losses and is now paused", currency))
	}

	result := FormatOrder(domain.SideSell, currency, quantity, bid, settledPrice, diff, orderID, t.now().In(t.location))
	t.runLog.Append("%s", result.Summary)
	return &result, nil
}

// alert отправляет важное уведомление, если канал настроен
func (t *Trader) alert(message string) {
	if t.alertFunc != nil {
		t.alertFunc(message)
	}
}

// hasCryptoBalance проверяет наличие хоть какого-то баланса кроме USDT
func hasCryptoBalance(balances map[string]domain.Balance) bool {
	for currency, balance := range balances {
		if currency == domain.SettlementCurrency {
			continue
		}
		if balance.Available > 0 {
			return true
		}
	}
	return false
}
