package sbl

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
)

func separableDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewDataset(mat.NewDense(4, 1, []float64{0, 1, 5, 6}), []int{-1, -1, 1, 1})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	return ds
}

func TestThresholdRange(t *testing.T) {
	column := ColumnStats{Min: decimal.NewFromInt(0), Max: decimal.NewFromInt(6)}
	r := NewThresholdRange(column, 10)
	if got := r.Len(); got != 12 {
		t.Fatalf("expected 12 thresholds, got %d", got)
	}

	first := r.GetNext()
	if !first.Equal(decimal.RequireFromString("-0.6")) {
		t.Fatalf("first threshold %v, want -0.6", first)
	}
	var last decimal.Decimal
	for r.HasNext() {
		last = r.GetNext()
	}
	if !last.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("last threshold %v, want 6", last)
	}
}

func TestThresholdRangeConstantColumn(t *testing.T) {
	column := ColumnStats{Min: decimal.NewFromInt(7), Max: decimal.NewFromInt(7)}
	r := NewThresholdRange(column, 10)
	if got := r.Len(); got != 1 {
		t.Fatalf("expected a single threshold, got %d", got)
	}
	if got := r.GetNext(); !got.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("threshold %v, want 7", got)
	}
	if r.HasNext() {
		t.Fatalf("range over a constant column must stop after one threshold")
	}
}

func TestThresholdRangeTinyColumn(t *testing.T) {
	column := ColumnStats{Min: decimal.Zero, Max: decimal.New(1, -17)}
	r := NewThresholdRange(column, 10)
	if !r.Step().Equal(decimal.New(1, -18)) {
		t.Fatalf("step %v, want 1e-18", r.Step())
	}
	if got := r.Len(); got != 12 {
		t.Fatalf("expected 12 thresholds, got %d", got)
	}
}

func TestBestStumpSeparable(t *testing.T) {
	ds := separableDataset(t)
	weights := uniformWeights(ds.Rows(), DefaultRounding())

	stump, surface, err := BestStump(ds, weights, 10, StrictOperators)
	if err != nil {
		t.Fatalf("best stump: %v", err)
	}
	if stump.FeatureIndex() != 0 || stump.Operator() != GreaterThan {
		t.Fatalf("unexpected stump %v", stump)
	}
	if !stump.Threshold().Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("threshold %v, want 1.2", stump.Threshold())
	}
	if !stump.WeightedError().IsZero() {
		t.Fatalf("weighted error %v, want 0", stump.WeightedError())
	}

	shape := surface.Errors.Shape()
	if shape[0] != 1 || shape[1] != 12 || shape[2] != 2 {
		t.Fatalf("unexpected surface shape %v", shape)
	}
	// threshold -0.6 with < votes Negative everywhere
	e, err := surface.ErrorAt(0, 0, 0)
	if err != nil {
		t.Fatalf("surface: %v", err)
	}
	if e != 0.5 {
		t.Fatalf("surface error %v, want 0.5", e)
	}
}

func TestBestStumpSkipsConstantFeature(t *testing.T) {
	features := mat.NewDense(4, 2, []float64{
		7, 0,
		7, 1,
		7, 5,
		7, 6,
	})
	ds, err := NewDataset(features, []int{-1, -1, 1, 1})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	weights := uniformWeights(ds.Rows(), DefaultRounding())

	stump, surface, err := BestStump(ds, weights, 10, StrictOperators)
	if err != nil {
		t.Fatalf("best stump: %v", err)
	}
	if stump.FeatureIndex() != 1 {
		t.Fatalf("expected the separating feature, got %v", stump)
	}
	e, err := surface.ErrorAt(0, 1, 0)
	if err != nil {
		t.Fatalf("surface: %v", err)
	}
	if e != -1 {
		t.Fatalf("constant column visited more than one threshold, error %v", e)
	}
}

func TestBestStumpKeepsEarliestOnTies(t *testing.T) {
	features := mat.NewDense(4, 2, []float64{
		0, 0,
		1, 1,
		5, 5,
		6, 6,
	})
	ds, err := NewDataset(features, []int{-1, -1, 1, 1})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	weights := uniformWeights(ds.Rows(), DefaultRounding())

	stump, _, err := BestStump(ds, weights, 10, StrictOperators)
	if err != nil {
		t.Fatalf("best stump: %v", err)
	}
	if stump.FeatureIndex() != 0 || !stump.Threshold().Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("expected the first zero error candidate, got %v", stump)
	}
}

func TestBestStumpErrors(t *testing.T) {
	ds := separableDataset(t)
	weights := uniformWeights(ds.Rows(), DefaultRounding())

	if _, _, err := BestStump(ds, weights, 0, StrictOperators); !errors.Is(err, ErrInvalidHyperparameter) {
		t.Fatalf("expected invalid hyperparameter, got %v", err)
	}
	if _, _, err := BestStump(ds, weights[:2], 10, StrictOperators); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected malformed input, got %v", err)
	}
	if _, _, err := BestStump(ds, weights, 10, []Operator{Operator(9)}); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
}
