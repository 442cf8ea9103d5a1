package sbl

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

func TestVoteWeight(t *testing.T) {
	alpha, err := voteWeight(decimal.RequireFromString("0.25"), DefaultRounding())
	if err != nil {
		t.Fatalf("vote weight: %v", err)
	}
	if !alpha.Equal(decimal.RequireFromString("0.549306144334")) {
		t.Fatalf("alpha %v", alpha)
	}

	alpha, err = voteWeight(decimal.RequireFromString("0.5"), DefaultRounding())
	if err != nil {
		t.Fatalf("vote weight: %v", err)
	}
	if !alpha.IsZero() {
		t.Fatalf("a coin flip stump must get a zero vote, got %v", alpha)
	}

	for _, e := range []string{"0", "1", "-0.1", "1.5"} {
		if _, err := voteWeight(decimal.RequireFromString(e), DefaultRounding()); !errors.Is(err, ErrDegenerateWeightedError) {
			t.Errorf("error %s: expected degenerate weighted error, got %v", e, err)
		}
	}
}

func TestUniformWeights(t *testing.T) {
	for _, n := range []int{1, 3, 6, 7, 1000} {
		weights := uniformWeights(n, DefaultRounding())
		if len(weights) != n {
			t.Fatalf("%d weights for %d rows", len(weights), n)
		}
		checkWeightsSumToOne(t, weights)
	}
}

func TestNormalizeWeights(t *testing.T) {
	weights := []decimal.Decimal{
		decimal.RequireFromString("1"),
		decimal.RequireFromString("1"),
		decimal.RequireFromString("1"),
		decimal.RequireFromString("0.000000000001"),
	}
	normalizeWeights(weights, DefaultRounding())
	checkWeightsSumToOne(t, weights)
	if !weights[3].Equal(DefaultRounding().minimalWeight()) {
		t.Fatalf("tiny weight should be floored, got %v", weights[3])
	}

	zeros := []decimal.Decimal{decimal.Zero, decimal.Zero}
	normalizeWeights(zeros, DefaultRounding())
	if !zeros[0].Equal(decimal.RequireFromString("0.5")) || !zeros[1].Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("zero weights should become uniform, got %v", zeros)
	}
}
