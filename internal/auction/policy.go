package auction

import "github.com/shopspring/decimal"

// ResolvePolicy combina a política de lance mínimo gravada no registro do
// evento com os defaults do serviço (variáveis POLICY_*). Campo ausente no
// registro (ponteiro nil) cai no default correspondente; os organizadores só
// configuram a política explicitamente em eventos fora do padrão.
func ResolvePolicy(defaults PolicyConfig, opening, floor *decimal.Decimal, percent *int, minorUnitPlaces *int32) PolicyConfig {
	cfg := defaults
	if opening != nil {
		cfg.OpeningMinimum = *opening
	}
	if floor != nil {
		cfg.IncrementFloor = *floor
	}
	if percent != nil {
		cfg.IncrementPercent = *percent
	}
	if minorUnitPlaces != nil {
		cfg.MinorUnitPlaces = *minorUnitPlaces
	}
	return cfg
}
