package engine

import (
	"time"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
)

// Задержки опроса статуса ордера: рыночные ордера обычно исполняются
// почти мгновенно, но read-путь биржи может отставать. Два ограниченных
// запроса дают точную цену исполнения без риска зависнуть внутри
// запланированного запуска
const (
	confirmFirstDelay = 3 * time.Second
	confirmRetryDelay = 1500 * time.Millisecond
)

// confirmOrder выясняет фактическую цену исполнения только что размещённого
// ордера ограниченным числом попыток. Каждый размещённый ордер сохраняется
// для аудита независимо от исхода - даже неподтверждённый.
// Возвращает (цена, true) при подтверждённом исполнении, иначе (0, false) -
// вызывающий откатывается к цене на момент решения
func (t *Trader) confirmOrder(orderID, currency, side string) (float64, bool) {
	if orderID == "" {
		t.runLog.Append("No order id returned for %s %s - order was not submitted", currency, side)
		return 0, false
	}

	delays := [...]time.Duration{t.confirmDelay, t.retryDelay}

	var detail *domain.OrderDetail

	for attempt := 0; attempt < len(delays); attempt++ {
		t.sleep(delays[attempt])

		d, err := t.orders.GetOrderDetail(orderID)
		if err != nil {
			t.runLog.Append("Failed to look up order %s (attempt %d/%d): %v", orderID, attempt+1, len(delays), err)
			continue
		}

		d.Currency = currency
		d.Side = side
		detail = d

		if d.Status == domain.StatusFilled && d.AvgPrice > 0 {
			t.saveOrder(d)
			return d.AvgPrice, true
		}
	}

	if detail == nil {
		detail = &domain.OrderDetail{
			OrderID:   orderID,
			Currency:  currency,
			Side:      side,
			Status:    domain.StatusUnknown,
			CreatedAt: t.now(),
		}
	}
	t.saveOrder(detail)

	t.runLog.Append("Order %s for %s was not confirmed as filled, falling back to the decision-time price", orderID, currency)
	return 0, false
}

// saveOrder сохраняет сырой ордер; ошибка записи не прерывает проход
func (t *Trader) saveOrder(detail *domain.OrderDetail) {
	if detail.CreatedAt.IsZero() {
		detail.CreatedAt = t.now()
	}
	if err := t.trades.SaveOrder(detail); err != nil {
		t.logger.Error("Failed to save order %s: %v", detail.OrderID, err)
		t.runLog.Append("Failed to save order %s: %v", detail.OrderID, err)
	}
}
