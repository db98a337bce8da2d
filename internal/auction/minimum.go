package auction

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// NextMinimum calcula o lance mínimo aceitável a partir do líder atual.
//
// Sem lances: o mínimo é o valor de abertura configurado do evento.
// Com lances: increment = max(IncrementFloor, round(CurrentBid × IncrementPercent / 100)),
// e o mínimo é CurrentBid + increment.
//
// O arredondamento acontece na menor unidade da moeda (MinorUnitPlaces) com
// half-up — decimal.Round é half-away-from-zero, que pra valores não
// negativos é exatamente half-up. O resultado tem que ser idêntico em todo
// call site (display do admin, display do licitante e admissão no servidor);
// qualquer divergência faz cliente e servidor discordarem se um lance cobre
// o mínimo.
func NextMinimum(leader ArtworkLeaderState, cfg PolicyConfig) (MinimumNextBid, error) {
	if cfg.IncrementPercent < 0 {
		return MinimumNextBid{}, fmt.Errorf("%w: increment percent %d", ErrConfiguration, cfg.IncrementPercent)
	}
	if cfg.IncrementFloor.IsNegative() {
		return MinimumNextBid{}, fmt.Errorf("%w: increment floor %s", ErrConfiguration, cfg.IncrementFloor)
	}

	if leader.CurrentBid == nil {
		return MinimumNextBid{
			MinimumAmount:    cfg.OpeningMinimum.Round(cfg.MinorUnitPlaces),
			Increment:        decimal.Zero,
			IncrementPercent: cfg.IncrementPercent,
		}, nil
	}

	current := *leader.CurrentBid

	pct := current.
		Mul(decimal.NewFromInt(int64(cfg.IncrementPercent))).
		Div(oneHundred).
		Round(cfg.MinorUnitPlaces)

	increment := cfg.IncrementFloor.Round(cfg.MinorUnitPlaces)
	if pct.GreaterThan(increment) {
		increment = pct
	}

	return MinimumNextBid{
		MinimumAmount:    current.Add(increment).Round(cfg.MinorUnitPlaces),
		Increment:        increment,
		IncrementPercent: cfg.IncrementPercent,
	}, nil
}
