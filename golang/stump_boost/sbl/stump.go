package sbl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

//Operator is the comparison a stump applies between a feature value and its threshold.
//A stump votes Positive when the comparison holds and Negative otherwise.
type Operator int

const (
	LessThan Operator = iota
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

//StrictOperators are searched by default.
var StrictOperators = []Operator{LessThan, GreaterThan}

//InclusiveOperators are searched when a booster is asked for the equality-inclusive variants.
var InclusiveOperators = []Operator{LessThanOrEqual, GreaterThanOrEqual}

func (op Operator) String() string {
	switch op {
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

//Valid reports whether op is one of the four known operators.
func (op Operator) Valid() bool {
	return op >= LessThan && op <= GreaterThanOrEqual
}

//apply compares value against threshold.
func (op Operator) apply(value, threshold decimal.Decimal) (bool, error) {
	cmp := value.Cmp(threshold)
	switch op {
	case LessThan:
		return cmp < 0, nil
	case LessThanOrEqual:
		return cmp <= 0, nil
	case GreaterThan:
		return cmp > 0, nil
	case GreaterThanOrEqual:
		return cmp >= 0, nil
	}
	return false, errors.Wrapf(ErrUnsupportedOperation, "operator %v", op)
}

//Stump is a one level decision tree over a single feature.
//Once its vote weight is set the stump is sealed and its error and predictions never change.
type Stump struct {
	featureIndex  int
	operator      Operator
	threshold     decimal.Decimal
	weightedError decimal.Decimal
	alpha         decimal.Decimal
	sealed        bool
	predictions   []Label // per row votes computed together with weightedError
}

//NewStump creates a stump that compares feature featureIndex against threshold.
func NewStump(featureIndex int, operator Operator, threshold decimal.Decimal) (*Stump, error) {
	if !operator.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedOperation, "operator %v", operator)
	}
	if featureIndex < 0 {
		return nil, errors.Errorf("negative feature index %d", featureIndex)
	}
	return &Stump{featureIndex: featureIndex, operator: operator, threshold: threshold}, nil
}

func (s *Stump) FeatureIndex() int { return s.featureIndex }
func (s *Stump) Operator() Operator { return s.operator }
func (s *Stump) Threshold() decimal.Decimal { return s.threshold }
func (s *Stump) WeightedError() decimal.Decimal { return s.weightedError }
func (s *Stump) Alpha() decimal.Decimal { return s.alpha }
func (s *Stump) String() string { return fmt.Sprintf("f_%d %v %v", s.featureIndex, s.operator, s.threshold) }

//Predictions returns a copy of the per row votes cached by the last EvaluateError call.
func (s *Stump) Predictions() []Label {
	return append([]Label(nil), s.predictions...)
}

//ClassifyValue votes on a single feature value.
func (s *Stump) ClassifyValue(value decimal.Decimal) (Label, error) {
	holds, err := s.operator.apply(value, s.threshold)
	if err != nil {
		return Negative, err
	}
	if holds {
		return Positive, nil
	}
	return Negative, nil
}

//Classify votes on a whole observation.
func (s *Stump) Classify(observation []float64) (Label, error) {
	if s.featureIndex >= len(observation) {
		return Negative, malformedf("observation has %d features, stump uses feature %d", len(observation), s.featureIndex)
	}
	value, err := toDecimal(observation[s.featureIndex])
	if err != nil {
		return Negative, err
	}
	return s.ClassifyValue(value)
}

//ClassifyStrings votes on an observation given as numeric strings.
func (s *Stump) ClassifyStrings(observation []string) (Label, error) {
	if s.featureIndex >= len(observation) {
		return Negative, malformedf("observation has %d features, stump uses feature %d", len(observation), s.featureIndex)
	}
	value, err := parseField(observation[s.featureIndex])
	if err != nil {
		return Negative, err
	}
	return s.ClassifyValue(value)
}

//EvaluateError sums the weights of the rows the stump misclassifies and caches its per row votes.
func (s *Stump) EvaluateError(column ColumnStats, weights []decimal.Decimal, labels []Label) (decimal.Decimal, error) {
	if s.sealed {
		return decimal.Zero, errors.Errorf("stump %v already has a vote weight", s)
	}
	if len(column.Values) != len(weights) || len(weights) != len(labels) {
		return decimal.Zero, malformedf("column, weights and labels lengths differ: %d, %d, %d",
			len(column.Values), len(weights), len(labels))
	}
	if cap(s.predictions) < len(labels) {
		s.predictions = make([]Label, len(labels))
	}
	s.predictions = s.predictions[:len(labels)]

	totalError := decimal.Zero
	for p, value := range column.Values {
		vote, err := s.ClassifyValue(value)
		if err != nil {
			return decimal.Zero, err
		}
		s.predictions[p] = vote
		if vote != labels[p] {
			totalError = totalError.Add(weights[p])
		}
	}
	s.weightedError = totalError
	return totalError, nil
}

//seal fixes the vote weight.
func (s *Stump) seal(alpha decimal.Decimal) {
	s.alpha = alpha
	s.sealed = true
}

//reset turns a scratch stump into a new candidate, keeping its prediction buffer.
func (s *Stump) reset(featureIndex int, operator Operator, threshold decimal.Decimal) {
	s.featureIndex = featureIndex
	s.operator = operator
	s.threshold = threshold
	s.weightedError = decimal.Zero
}

func parseField(field string) (decimal.Decimal, error) {
	val, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return decimal.Zero, malformedf("%q is not a number", field)
	}
	return toDecimal(val)
}

func toDecimal(val float64) (decimal.Decimal, error) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return decimal.Zero, malformedf("%v is not a finite number", val)
	}
	return decimal.NewFromFloat(val), nil
}
