package sbl

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
)

//Member is one weak learner of an ensemble together with its vote weight.
type Member struct {
	Stump *Stump
	Alpha decimal.Decimal
}

//Ensemble is the trained model: stumps in the order they were found.
//It is read-only after training and can be shared between goroutines.
type Ensemble struct {
	Members       []Member
	LearningCurve []float64 // training error after each iteration
	Reports       []IterationReport
}

//Size returns the number of stumps.
func (e *Ensemble) Size() int {
	return len(e.Members)
}

//Score returns the weighted sum of the stump votes for an observation.
func (e *Ensemble) Score(observation []float64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for ind, member := range e.Members {
		vote, err := member.Stump.Classify(observation)
		if err != nil {
			return decimal.Zero, errors.WithMessagef(err, "stump %d", ind)
		}
		sum = sum.Add(member.Alpha.Mul(decimal.NewFromInt(int64(vote))))
	}
	return sum, nil
}

//Classify returns Positive when the weighted vote is strictly positive and Negative otherwise.
func (e *Ensemble) Classify(observation []float64) (Label, error) {
	sum, err := e.Score(observation)
	if err != nil {
		return Negative, err
	}
	return signLabel(sum), nil
}

//ClassifyStrings classifies an observation given as numeric strings.
func (e *Ensemble) ClassifyStrings(observation []string) (Label, error) {
	sum := decimal.Zero
	for ind, member := range e.Members {
		vote, err := member.Stump.ClassifyStrings(observation)
		if err != nil {
			return Negative, errors.WithMessagef(err, "stump %d", ind)
		}
		sum = sum.Add(member.Alpha.Mul(decimal.NewFromInt(int64(vote))))
	}
	return signLabel(sum), nil
}

//ClassifyMatrix classifies every row of observations.
func (e *Ensemble) ClassifyMatrix(observations *mat.Dense) ([]Label, error) {
	if observations == nil || observations.IsEmpty() {
		return nil, malformedf("empty observations matrix")
	}
	h, _ := observations.Dims()
	labels := make([]Label, h)
	for p := 0; p < h; p++ {
		label, err := e.Classify(observations.RawRowView(p))
		if err != nil {
			return nil, errors.WithMessagef(err, "row %d", p)
		}
		labels[p] = label
	}
	return labels, nil
}

func signLabel(sum decimal.Decimal) Label {
	if sum.IsPositive() {
		return Positive
	}
	return Negative
}
