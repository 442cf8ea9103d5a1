package sbl

import (
	"math"

	"github.com/shopspring/decimal"
)

//Rounding holds the decimal scales used by the weight and vote bookkeeping.
type Rounding struct {
	RatioScale  int32 // scale of (1-e)/e before the logarithm
	AlphaScale  int32
	ScoreScale  int32 // scale of one alpha*prediction increment of the aggregate score
	WeightScale int32
}

//DefaultRounding returns the scales used unless a booster is told otherwise.
func DefaultRounding() Rounding {
	return Rounding{RatioScale: 6, AlphaScale: 12, ScoreScale: 8, WeightScale: 8}
}

func (r Rounding) validate() error {
	if r.RatioScale < 1 || r.AlphaScale < 1 || r.ScoreScale < 1 || r.WeightScale < 1 {
		return invalidParamf("rounding scales must be positive, got %+v", r)
	}
	return nil
}

// minimalWeight is the smallest positive weight representable at the weight scale.
func (r Rounding) minimalWeight() decimal.Decimal {
	return decimal.New(1, -r.WeightScale)
}

var (
	decimalOne  = decimal.NewFromInt(1)
	decimalHalf = decimal.NewFromFloat(0.5)
)

//uniformWeights returns n weights equal to 1/n that sum exactly to one.
func uniformWeights(n int, rounding Rounding) []decimal.Decimal {
	weights := make([]decimal.Decimal, n)
	share := decimalOne.DivRound(decimal.NewFromInt(int64(n)), rounding.WeightScale)
	for i := range weights {
		weights[i] = share
	}
	fixResidual(weights)
	return weights
}

//normalizeWeights divides every weight by the total, rounds to the weight scale and pushes the
//rounding residual into the largest weight, so the result sums exactly to one.
func normalizeWeights(weights []decimal.Decimal, rounding Rounding) {
	total := sumWeights(weights)
	if !total.IsPositive() {
		copy(weights, uniformWeights(len(weights), rounding))
		return
	}
	floor := rounding.minimalWeight()
	for i, w := range weights {
		w = w.DivRound(total, rounding.WeightScale)
		if w.LessThan(floor) {
			w = floor
		}
		weights[i] = w
	}
	fixResidual(weights)
}

func fixResidual(weights []decimal.Decimal) {
	if len(weights) == 0 {
		return
	}
	sum := decimal.Zero
	largest := 0
	for i, w := range weights {
		sum = sum.Add(w)
		if w.GreaterThan(weights[largest]) {
			largest = i
		}
	}
	weights[largest] = weights[largest].Add(decimalOne.Sub(sum))
}

//voteWeight computes 0.5*ln((1-e)/e) with the ratio and the result rounded to the configured scales.
func voteWeight(weightedError decimal.Decimal, rounding Rounding) (decimal.Decimal, error) {
	if !weightedError.IsPositive() || !weightedError.LessThan(decimalOne) {
		return decimal.Zero, degeneratef("weighted error %v leaves the vote weight undefined", weightedError)
	}
	ratio := decimalOne.Sub(weightedError).DivRound(weightedError, rounding.RatioScale)
	if !ratio.IsPositive() {
		return decimal.Zero, degeneratef("weighted error %v leaves the vote weight undefined", weightedError)
	}
	logRatio := math.Log(ratio.InexactFloat64())
	return decimalHalf.Mul(decimal.NewFromFloat(logRatio)).Round(rounding.AlphaScale), nil
}

//exponent returns e^x as a decimal.
func exponent(x decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(math.Exp(x.InexactFloat64()))
}

func sumWeights(weights []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(w)
	}
	return total
}
