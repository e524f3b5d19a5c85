package domain

import "time"

// Tick es un precio puntual del feed de referencia (CEX).
type Tick struct {
	Symbol string
	Price  float64
	Ts     time.Time
}

// FeatureSnapshot son las features de corto plazo derivadas del buffer de ticks.
// Si OK es false, el resto de campos numéricos no son fiables y el consumidor
// no debe actuar sobre ellos.
type FeatureSnapshot struct {
	RefPrice    float64 `json:"ref_price"`
	Return60    float64 `json:"return_60s"`
	Vol60       float64 `json:"vol_60s"`
	OK          bool    `json:"ok"`
	SampleCount int     `json:"sample_count"`
}
