package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate выполняет поверхностную структурную проверку конфигурации
// перед проходом: обязательные поля на месте и ценовые якоря записей
// не противоречат друг другу. Бизнес-правила здесь не проверяются
func (c *Configuration) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	for currency, record := range c.Records {
		if record.LastBuyPrice != nil && record.LastSellPrice != nil {
			return fmt.Errorf("%w: record %s has both buy and sell price anchors", ErrConfigInvalid, currency)
		}
		if record.IsHolding != (record.LastBuyPrice != nil) {
			return fmt.Errorf("%w: record %s isHolding does not match its price anchor", ErrConfigInvalid, currency)
		}
	}

	return nil
}
