package exchange

import (
	_ "embed"
	"math"

	"gopkg.in/yaml.v3"
)

//go:embed precision.yaml
var precisionYAML []byte

// quantityDecimals точность количества по валютам, загружается из
// встроенной таблицы при старте процесса
var quantityDecimals map[string]int

// defaultQuantityDecimals для валют, отсутствующих в таблице
const defaultQuantityDecimals = 2

func init() {
	if err := yaml.Unmarshal(precisionYAML, &quantityDecimals); err != nil {
		panic("exchange: invalid precision table: " + err.Error())
	}
}

// RoundQuantity округляет количество вниз до торгуемой точности валюты.
// Округление всегда вниз: продать чуть меньше можно, чуть больше - нет
func (c *CryptoClient) RoundQuantity(currency string, quantity float64) float64 {
	decimals, ok := quantityDecimals[currency]
	if !ok {
		decimals = defaultQuantityDecimals
	}

	factor := math.Pow(10, float64(decimals))
	return math.Floor(quantity*factor) / factor
}
