package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
)

// FormatOrder собирает OrderResult для уведомления пользователя.
// valueFilled = 0 означает неподтверждённый ордер: количество помечается
// как Estimate и считается от цены размещения.
// Особенность формата: в summary покупки всегда стоит цена размещения,
// а количество считается от цены исполнения (если она известна)
func FormatOrder(side, name string, amount, valuePlaced, valueFilled, percentageDiff float64, orderID string, at time.Time) domain.OrderResult {
	isBuy := side == domain.SideBuy

	value := valuePlaced
	status := domain.StatusPlaced
	estimate := "Estimate "

	if valueFilled > 0 {
		value = valueFilled
		status = domain.StatusFilled
		estimate = ""
	}

	result := domain.OrderResult{
		Type:        side,
		Name:        name,
		Amount:      amount,
		ValuePlaced: valuePlaced,
		ValueFilled: valueFilled,
		OrderID:     orderID,
		Date:        at.Format(domain.DateTimeFormat),
	}

	if isBuy {
		result.Quantity = fmt.Sprintf("%s%s %s", estimate, formatNum(amount/value), name)
		result.Summary = fmt.Sprintf("Buy order %s for $%s USD worth of %s at %s",
			status, formatNum(amount), name, formatNum(valuePlaced))
		return result
	}

	result.Difference = formatDiff(percentageDiff)
	result.Quantity = fmt.Sprintf("%s%.2f USD", estimate, amount*value)
	result.Summary = fmt.Sprintf("Sell order %s for %s %s at $%s USD",
		status, formatNum(amount), name, formatNum(value))
	return result
}

// FormatPriceLog строит однострочный отчёт по валюте без сделки.
// context - "bought" или "sold" в зависимости от установленного якоря
func FormatPriceLog(name, context string, price, value, diff float64, simpleLogs bool) string {
	shortDiff := formatDiff(diff)

	if simpleLogs {
		if context == "bought" {
			return fmt.Sprintf("Holding %s (%s)", name, shortDiff)
		}
		return fmt.Sprintf("Waiting to buy %s (%s)", name, shortDiff)
	}

	// большие цены режем до 2 знаков, мелкие оставляем как есть
	priceFormatted := formatNum(price)
	if price > 10 {
		priceFormatted = strconv.FormatFloat(price, 'f', 2, 64)
	}

	return fmt.Sprintf("%s was last %s at %s and is now %s (%s)",
		name, context, priceFormatted, formatNum(value), shortDiff)
}

// formatDiff форматирует процентную разницу с явным знаком: "+14.67%"
func formatDiff(diff float64) string {
	if diff > 0 {
		return fmt.Sprintf("+%.2f%%", diff)
	}
	return fmt.Sprintf("%.2f%%", diff)
}

// formatNum печатает число без лишних хвостовых нулей
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
