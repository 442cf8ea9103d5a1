package sbl

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
)

func mustStump(t *testing.T, featureIndex int, operator Operator, threshold string) *Stump {
	t.Helper()
	stump, err := NewStump(featureIndex, operator, decimal.RequireFromString(threshold))
	if err != nil {
		t.Fatalf("new stump: %v", err)
	}
	return stump
}

func TestStumpClassifyAtThreshold(t *testing.T) {
	cases := []struct {
		operator           Operator
		below, equal, over Label
	}{
		{LessThan, Positive, Negative, Negative},
		{LessThanOrEqual, Positive, Positive, Negative},
		{GreaterThan, Negative, Negative, Positive},
		{GreaterThanOrEqual, Negative, Positive, Positive},
	}

	for _, c := range cases {
		stump := mustStump(t, 1, c.operator, "2.5")
		for value, want := range map[float64]Label{2.4999: c.below, 2.5: c.equal, 2.5001: c.over} {
			got, err := stump.Classify([]float64{100, value})
			if err != nil {
				t.Fatalf("%v: %v", stump, err)
			}
			if got != want {
				t.Errorf("%v classifies %v as %d, want %d", stump, value, got, want)
			}
		}
	}
}

func TestStumpClassifyStrings(t *testing.T) {
	stump := mustStump(t, 1, GreaterThan, "2")
	label, err := stump.ClassifyStrings([]string{"1.", "2.1"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if label != Positive {
		t.Fatalf("got %d, want %d", label, Positive)
	}

	if _, err := stump.ClassifyStrings([]string{"1", "two"}); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected malformed input, got %v", err)
	}
	if _, err := stump.Classify([]float64{1}); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected malformed input for a short observation, got %v", err)
	}
}

func TestStumpUnsupportedOperator(t *testing.T) {
	if _, err := NewStump(0, Operator(7), decimal.Zero); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}

	stump := &Stump{operator: Operator(7)}
	if _, err := stump.ClassifyValue(decimal.Zero); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
}

func TestStumpEvaluateError(t *testing.T) {
	ds, err := NewDataset(mat.NewDense(4, 1, []float64{0, 1, 5, 6}), []int{-1, 1, 1, -1})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	weights := []decimal.Decimal{
		decimal.RequireFromString("0.1"),
		decimal.RequireFromString("0.2"),
		decimal.RequireFromString("0.3"),
		decimal.RequireFromString("0.4"),
	}

	stump := mustStump(t, 0, GreaterThan, "0.5")
	weightedError, err := stump.EvaluateError(ds.Column(0), weights, ds.labels)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !weightedError.Equal(decimal.RequireFromString("0.4")) {
		t.Fatalf("weighted error %v, want 0.4", weightedError)
	}
	want := []Label{Negative, Positive, Positive, Positive}
	for p, vote := range stump.Predictions() {
		if vote != want[p] {
			t.Fatalf("prediction[%d] = %d, want %d", p, vote, want[p])
		}
	}

	stump.seal(decimal.NewFromInt(1))
	if _, err := stump.EvaluateError(ds.Column(0), weights, ds.labels); err == nil {
		t.Fatalf("a sealed stump must not be evaluated again")
	}
}

func TestStumpWeightedErrorBounds(t *testing.T) {
	ds, err := NewDataset(mat.NewDense(5, 1, []float64{3, -1, 4, 1, 5}), []int{1, -1, -1, 1, 1})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	weights := uniformWeights(ds.Rows(), DefaultRounding())

	for _, operator := range []Operator{LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual} {
		r := NewThresholdRange(ds.Column(0), 7)
		for r.HasNext() {
			stump, err := NewStump(0, operator, r.GetNext())
			if err != nil {
				t.Fatalf("new stump: %v", err)
			}
			weightedError, err := stump.EvaluateError(ds.Column(0), weights, ds.labels)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if weightedError.IsNegative() || weightedError.GreaterThan(decimalOne) {
				t.Fatalf("%v: weighted error %v outside of [0, 1]", stump, weightedError)
			}
		}
	}
}
