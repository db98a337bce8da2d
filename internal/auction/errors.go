package auction

import "errors"

var (
	// ErrInvalidInput indica dado malformado chegando num agregador
	// (valor não positivo, timestamp ausente, lance abaixo do mínimo na admissão).
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indica política mal configurada (percentual ou piso negativo).
	// Fatal para a chamada; nenhum default é substituído.
	ErrConfiguration = errors.New("invalid policy configuration")
)
