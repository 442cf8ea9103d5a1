package sbl

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorgonia.org/tensor"
)

//SearchSurface contains the weighted error of every candidate visited by BestStump.
//Errors has the shape (features, thresholds, operators). Columns with fewer thresholds
//than the widest one leave -1 in the cells they never visit.
type SearchSurface struct {
	Errors    *tensor.Dense
	Operators []Operator
}

//ErrorAt returns the weighted error of a candidate, or -1 if the candidate does not exist.
func (s *SearchSurface) ErrorAt(feature, threshold, operator int) (float64, error) {
	element, err := s.Errors.At(feature, threshold, operator)
	if err != nil {
		return 0, err
	}
	return element.(float64), nil
}

//FeatureMinima returns the smallest visited error of every feature.
func (s *SearchSurface) FeatureMinima() []float64 {
	shape := s.Errors.Shape()
	minima := make([]float64, shape[0])
	for f := range minima {
		minima[f] = -1
		for t := 0; t < shape[1]; t++ {
			for o := 0; o < shape[2]; o++ {
				e, err := s.ErrorAt(f, t, o)
				if err != nil || e < 0 {
					continue
				}
				if minima[f] < 0 || e < minima[f] {
					minima[f] = e
				}
			}
		}
	}
	return minima
}

//allocateSurface allocates the error tensor and marks every cell as unvisited.
func allocateSurface(features, thresholds int, operators []Operator) *SearchSurface {
	backing := make([]float64, features*thresholds*len(operators))
	for ind := range backing {
		backing[ind] = -1
	}
	return &SearchSurface{
		Errors:    tensor.New(tensor.WithShape(features, thresholds, len(operators)), tensor.WithBacking(backing)),
		Operators: append([]Operator(nil), operators...),
	}
}

//BestStump enumerates every (feature, threshold, operator) candidate and returns the one with
//the minimal weighted error. Candidates are visited feature by feature, thresholds in increasing
//order, operators in the given order; on equal errors the earliest candidate wins.
func BestStump(ds *Dataset, weights []decimal.Decimal, steps int, operators []Operator) (*Stump, *SearchSurface, error) {
	if steps < 1 {
		return nil, nil, invalidParamf("number of threshold steps should be positive, got %d", steps)
	}
	if len(operators) == 0 {
		return nil, nil, invalidParamf("no operators to search")
	}
	if len(weights) != ds.Rows() {
		return nil, nil, malformedf("%d weights for %d rows", len(weights), ds.Rows())
	}

	w := ds.Features()
	ranges := make([]*ThresholdRange, w)
	width := 0
	for q := 0; q < w; q++ {
		ranges[q] = NewThresholdRange(ds.Column(q), steps)
		if n := ranges[q].Len(); n > width {
			width = n
		}
	}
	surface := allocateSurface(w, width, operators)

	var best *Stump
	minError := decimal.Zero
	candidate := &Stump{}

	for q := 0; q < w; q++ {
		column := ds.Column(q)
		for thresholdInd := 0; ranges[q].HasNext(); thresholdInd++ {
			threshold := ranges[q].GetNext()
			for operatorInd, operator := range operators {
				candidate.reset(q, operator, threshold)
				currentError, err := candidate.EvaluateError(column, weights, ds.labels)
				if err != nil {
					return nil, nil, errors.WithMessagef(err, "feature %d threshold %v", q, threshold)
				}
				if err := surface.Errors.SetAt(currentError.InexactFloat64(), q, thresholdInd, operatorInd); err != nil {
					return nil, nil, err
				}

				if best == nil || currentError.LessThan(minError) {
					minError = currentError
					previous := best
					best = candidate
					if previous == nil {
						previous = &Stump{}
					}
					candidate = previous
				}
			}
		}
	}

	return best, surface, nil
}
