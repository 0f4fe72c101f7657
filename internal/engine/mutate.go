package engine

import (
	"math"
	"time"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
)

// UpdateRecord применяет завершённую сделку к записи валюты - чистая
// функция состояния: ставит нужный ценовой якорь, снимает противоположный,
// переключает IsHolding, штампует дату и снимает одноразовый force-флаг.
// Для продаж с настроенным лимитом капитала LimitUSDT заменяется на
// реализованную стоимость в USDT (с округлением вниз), чтобы выделенный
// капитал валюты накапливал прибыль/убыток между циклами.
// Пороги здесь не трогаются - ими владеет только stop-loss логика движка.
// Повторный вызов с теми же аргументами даёт идентичную запись
func UpdateRecord(cfg *domain.Configuration, currency string, settledPrice float64, isBuy bool, settledUSDT float64, at time.Time) {
	record := cfg.Records[currency]
	if record == nil {
		record = &domain.CurrencyRecord{}
		cfg.Records[currency] = record
	}

	price := settledPrice

	if isBuy {
		record.LastBuyPrice = &price
		record.LastSellPrice = nil
		record.IsHolding = true
		record.ForceBuy = false
	} else {
		record.LastSellPrice = &price
		record.LastBuyPrice = nil
		record.IsHolding = false
		record.ForceSell = false

		if record.LimitUSDT != nil && settledUSDT > 0 {
			realized := math.Floor(settledUSDT)
			record.LimitUSDT = &realized
		}
	}

	record.OrderDate = at.Format(domain.DateTimeFormat)
	record.Timestamp = at.UnixMilli()
}
