package domain

import "errors"

// ErrNoMarket indica que no hay mercado activo/válido para el símbolo y la
// ventana actual. Es un resultado normal por símbolo, no un fallo del ciclo.
var ErrNoMarket = errors.New("no active market for window")
