package sbl

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

//DegeneratePolicy decides what happens when the best stump has a weighted error of 0 or 1.
type DegeneratePolicy int

const (
	//Clamp moves the error into [Epsilon, 1-Epsilon] before the vote weight is computed.
	Clamp DegeneratePolicy = iota
	//Fail stops the training with ErrDegenerateWeightedError.
	Fail
)

//DefaultEpsilon is the clamping margin used when BoosterParams.Epsilon is zero.
const DefaultEpsilon = 1e-6

//BoosterParams collect arguments required to construct a booster.
type BoosterParams struct {
	ThresholdSteps int
	MaxIterations  int
	TargetError    float64

	// InclusiveOperators makes the search use <= and >= instead of < and >.
	InclusiveOperators bool
	Degenerate         DegeneratePolicy
	Epsilon            float64
	Rounding           *Rounding

	OnIteration func(IterationReport)
}

//Validate checks the parameter domains.
func (params BoosterParams) Validate() error {
	if params.ThresholdSteps < 1 {
		return invalidParamf("number of threshold steps should be at least 1, got %d", params.ThresholdSteps)
	}
	if params.MaxIterations < 1 {
		return invalidParamf("max iterations should be at least 1, got %d", params.MaxIterations)
	}
	if !(params.TargetError >= 0 && params.TargetError <= 1) {
		return invalidParamf("target error should be in [0, 1], got %v", params.TargetError)
	}
	if params.Degenerate != Clamp && params.Degenerate != Fail {
		return invalidParamf("unknown degenerate error policy %d", params.Degenerate)
	}
	if !(params.Epsilon >= 0 && params.Epsilon < 0.5) {
		return invalidParamf("epsilon should be in [0, 0.5), got %v", params.Epsilon)
	}
	if params.Rounding != nil {
		return params.Rounding.validate()
	}
	return nil
}

func (params BoosterParams) operators() []Operator {
	if params.InclusiveOperators {
		return InclusiveOperators
	}
	return StrictOperators
}

func (params BoosterParams) rounding() Rounding {
	if params.Rounding == nil {
		return DefaultRounding()
	}
	return *params.Rounding
}

func (params BoosterParams) epsilon() decimal.Decimal {
	if params.Epsilon == 0 {
		return decimal.NewFromFloat(DefaultEpsilon)
	}
	return decimal.NewFromFloat(params.Epsilon)
}

//TrainState is the position of a booster in its life cycle.
type TrainState int

const (
	Initializing TrainState = iota
	Iterating
	Converged
	ExhaustedIterations
)

func (state TrainState) String() string {
	switch state {
	case Initializing:
		return "initializing"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case ExhaustedIterations:
		return "exhausted iterations"
	}
	return fmt.Sprintf("TrainState(%d)", int(state))
}

//Terminal reports whether no more iterations will run.
func (state TrainState) Terminal() bool {
	return state == Converged || state == ExhaustedIterations
}

//IterationReport describes one finished boosting iteration.
type IterationReport struct {
	Iteration     int             `json:"iteration"`
	FeatureIndex  int             `json:"feature_index"`
	Operator      string          `json:"operator"`
	Threshold     decimal.Decimal `json:"threshold"`
	WeightedError decimal.Decimal `json:"weighted_error"`
	Clamped       bool            `json:"clamped"`
	Alpha         decimal.Decimal `json:"alpha"`
	TrainingError float64         `json:"training_error"`
	State         string          `json:"state"`

	// FeatureErrors is the smallest weighted error the search found for each feature.
	FeatureErrors []float64 `json:"feature_errors"`
}

//Booster owns the mutable state of one training run: the sample weights and the aggregate score.
type Booster struct {
	dataset  *Dataset
	params   BoosterParams
	rounding Rounding

	weights        []decimal.Decimal
	aggregateScore []decimal.Decimal
	ensemble       *Ensemble
	state          TrainState
	lastSurface    *SearchSurface
}

//NewBooster sets uniform weights, a zero aggregate score and an empty ensemble.
func NewBooster(ds *Dataset, params BoosterParams) (*Booster, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, malformedf("nil dataset")
	}
	rounding := params.rounding()
	h := ds.Rows()
	if decimal.NewFromInt(int64(h)).GreaterThan(decimal.New(1, rounding.WeightScale)) {
		return nil, invalidParamf("weight scale %d can not represent %d rows", rounding.WeightScale, h)
	}

	booster := &Booster{
		dataset:        ds,
		params:         params,
		rounding:       rounding,
		weights:        uniformWeights(h, rounding),
		aggregateScore: make([]decimal.Decimal, h),
		ensemble:       &Ensemble{},
		state:          Initializing,
	}
	for p := range booster.aggregateScore {
		booster.aggregateScore[p] = decimal.Zero
	}
	return booster, nil
}

//State returns the current life cycle state.
func (booster *Booster) State() TrainState {
	return booster.state
}

//Ensemble returns the model built so far. It must not be used for training after Step is called again.
func (booster *Booster) Ensemble() *Ensemble {
	return booster.ensemble
}

//LastSurface returns the error surface of the latest search, nil before the first Step.
func (booster *Booster) LastSurface() *SearchSurface {
	return booster.lastSurface
}

//Weights returns a copy of the current sample weights.
func (booster *Booster) Weights() []decimal.Decimal {
	return append([]decimal.Decimal(nil), booster.weights...)
}

//Step runs one boosting iteration: search, vote weight, reweighting and the stopping rule.
func (booster *Booster) Step() (IterationReport, error) {
	if booster.state.Terminal() {
		return IterationReport{}, errors.Wrapf(ErrTrainingFinished, "booster is %v", booster.state)
	}
	booster.state = Iterating

	stump, surface, err := BestStump(booster.dataset, booster.weights, booster.params.ThresholdSteps, booster.params.operators())
	if err != nil {
		return IterationReport{}, err
	}
	booster.lastSurface = surface

	weightedError, clamped, err := booster.boundedError(stump.WeightedError())
	if err != nil {
		return IterationReport{}, errors.WithMessagef(err, "stump %v", stump)
	}
	alpha, err := voteWeight(weightedError, booster.rounding)
	if err != nil {
		return IterationReport{}, errors.WithMessagef(err, "stump %v", stump)
	}
	stump.seal(alpha)

	booster.updateWeights(stump)
	trainingError := booster.trainingError()

	booster.ensemble.Members = append(booster.ensemble.Members, Member{Stump: stump, Alpha: alpha})
	booster.ensemble.LearningCurve = append(booster.ensemble.LearningCurve, trainingError)

	switch {
	case trainingError <= booster.params.TargetError:
		booster.state = Converged
	case len(booster.ensemble.Members) >= booster.params.MaxIterations:
		booster.state = ExhaustedIterations
	}

	report := IterationReport{
		Iteration:     len(booster.ensemble.Members),
		FeatureIndex:  stump.FeatureIndex(),
		Operator:      stump.Operator().String(),
		Threshold:     stump.Threshold(),
		WeightedError: stump.WeightedError(),
		Clamped:       clamped,
		Alpha:         alpha,
		TrainingError: trainingError,
		State:         booster.state.String(),
		FeatureErrors: surface.FeatureMinima(),
	}
	booster.ensemble.Reports = append(booster.ensemble.Reports, report)
	log.Printf("Stump number %d: %v error=%v alpha=%v training error=%v\n",
		report.Iteration, stump, report.WeightedError, alpha, trainingError)
	if booster.params.OnIteration != nil {
		booster.params.OnIteration(report)
	}
	return report, nil
}

//boundedError applies the degenerate error policy.
func (booster *Booster) boundedError(weightedError decimal.Decimal) (decimal.Decimal, bool, error) {
	eps := booster.params.epsilon()
	upper := decimalOne.Sub(eps)
	if weightedError.GreaterThanOrEqual(eps) && weightedError.LessThanOrEqual(upper) {
		return weightedError, false, nil
	}
	if booster.params.Degenerate == Fail {
		return weightedError, false, degeneratef("weighted error %v leaves the vote weight undefined", weightedError)
	}
	if weightedError.LessThan(eps) {
		return eps, true, nil
	}
	return upper, true, nil
}

//updateWeights folds the stump votes into the aggregate score and reweights the samples:
//correctly classified rows are multiplied by e^-alpha, misclassified ones by e^alpha.
func (booster *Booster) updateWeights(stump *Stump) {
	alpha := stump.Alpha()
	shrink := exponent(alpha.Neg())
	grow := exponent(alpha)

	for p, vote := range stump.predictions {
		increment := alpha.Mul(decimal.NewFromInt(int64(vote))).Round(booster.rounding.ScoreScale)
		booster.aggregateScore[p] = booster.aggregateScore[p].Add(increment)

		factor := grow
		if vote == booster.dataset.labels[p] {
			factor = shrink
		}
		booster.weights[p] = booster.weights[p].Mul(factor).Round(booster.rounding.WeightScale)
	}
	normalizeWeights(booster.weights, booster.rounding)
}

//trainingError is the fraction of rows whose aggregate score sign disagrees with the label.
//A zero score counts as Negative.
func (booster *Booster) trainingError() float64 {
	errorsCount := 0
	for p, score := range booster.aggregateScore {
		vote := Negative
		if score.IsPositive() {
			vote = Positive
		}
		if vote != booster.dataset.labels[p] {
			errorsCount++
		}
	}
	return float64(errorsCount) / float64(len(booster.aggregateScore))
}

//Train runs boosting iterations until the training error reaches the target or the iteration
//budget is spent. The context is checked between iterations.
func Train(ctx context.Context, ds *Dataset, params BoosterParams) (*Ensemble, error) {
	booster, err := NewBooster(ds, params)
	if err != nil {
		return nil, err
	}
	log.Printf("Training on %d rows and %d features %s\n", ds.Rows(), ds.Features(), ds.description())

	for !booster.State().Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "training stopped after %d iterations", len(booster.ensemble.Members))
		}
		if _, err := booster.Step(); err != nil {
			return nil, err
		}
	}
	log.Printf("Training %v after %d iterations\n", booster.State(), len(booster.ensemble.Members))
	return booster.Ensemble(), nil
}

//TrainFile validates params, loads a pipe separated training file and trains on it.
func TrainFile(ctx context.Context, fileName string, params BoosterParams) (*Ensemble, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	ds, err := LoadPSVFile(fileName)
	if err != nil {
		return nil, err
	}
	return Train(ctx, ds, params)
}
