package domain

import (
	"fmt"
	"math"
)

// Constantes de referencia del fee curve con la configuración por defecto
// (feeRate=0.25, exponent=1.0). El self-check de arranque las verifica:
// un curve mal calibrado corrompe silenciosamente todas las decisiones.
const (
	defaultFeeRate  = 0.25
	defaultExponent = 1.0

	feeRefAtHalf  = 0.0625 // TakerFee(0.50) = 0.25 × (0.5×0.5)
	feeRefAtTenth = 0.0225 // TakerFee(0.10) = 0.25 × (0.1×0.9)

	feeRefTolerance = 1e-10
)

// CostModel calcula los costes esperados de una compra hipotética:
// fee del taker y slippage contra la liquidez apoyada.
type CostModel struct {
	FeeRate     float64 // escala del fee curve
	Exponent    float64 // exponente sobre p(1-p)
	SlipPerUnit float64 // USDC de slippage por unidad inversa de depth
	SlipMax     float64 // tope de slippage; también el valor asumido sin depth
}

// DefaultCostModel devuelve el modelo de costes de producción.
func DefaultCostModel() CostModel {
	return CostModel{
		FeeRate:     defaultFeeRate,
		Exponent:    defaultExponent,
		SlipPerUnit: 0.25,
		SlipMax:     0.01,
	}
}

// TakerFee devuelve el fee esperado para un fill al precio p.
// Curva de una sola joroba: máxima en p=0.5, cero en los extremos.
// Para p fuera de (0,1) devuelve 0.
func (c CostModel) TakerFee(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return c.FeeRate * math.Pow(p*(1-p), c.Exponent)
}

// Slippage estima el coste de slippage dado el tamaño apoyado en el ask.
// Inversamente proporcional al depth, con tope en SlipMax.
// Si el depth es desconocido (<= 0), asume el máximo.
func (c CostModel) Slippage(askSize float64) float64 {
	if askSize <= 0 {
		return c.SlipMax
	}
	s := c.SlipPerUnit / askSize
	if s > c.SlipMax {
		return c.SlipMax
	}
	return s
}

// VerifyFeeCurve comprueba el fee curve del modelo contra las constantes de
// referencia. Debe ejecutarse en el arranque sobre el modelo ya configurado;
// un mismatch (p.ej. un fee_rate mal puesto en el YAML) es error fatal.
func (c CostModel) VerifyFeeCurve() error {
	if got := c.TakerFee(0.50); math.Abs(got-feeRefAtHalf) > feeRefTolerance {
		return fmt.Errorf("domain.VerifyFeeCurve: fee(0.50)=%.12f, want %.12f", got, feeRefAtHalf)
	}
	if got := c.TakerFee(0.10); math.Abs(got-feeRefAtTenth) > feeRefTolerance {
		return fmt.Errorf("domain.VerifyFeeCurve: fee(0.10)=%.12f, want %.12f", got, feeRefAtTenth)
	}
	if c.TakerFee(0) != 0 || c.TakerFee(1) != 0 {
		return fmt.Errorf("domain.VerifyFeeCurve: fee must be exactly zero at the boundaries")
	}
	return nil
}
