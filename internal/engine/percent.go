package engine

// PercentChange возвращает процентную разницу между a и b по симметричной
// формуле со средним знаменателем: 100*(a-b)/((a+b)/2).
// В отличие от деления на один из концов, так пороги покупки и продажи
// сравнимы по масштабу и PercentChange(a,b) = -PercentChange(b,a)
func PercentChange(a, b float64) float64 {
	return 100 * ((a - b) / ((a + b) / 2))
}
