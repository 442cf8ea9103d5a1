package sbl

import (
	"context"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func TestLoadPSV(t *testing.T) {
	source := "0|-1\n1|-1\n\n5|1\n6.0|1.0\n"
	ds, err := LoadPSV(strings.NewReader(source))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Rows() != 4 || ds.Features() != 1 {
		t.Fatalf("dims %d x %d", ds.Rows(), ds.Features())
	}
	want := []Label{Negative, Negative, Positive, Positive}
	for p, label := range ds.Labels() {
		if label != want[p] {
			t.Fatalf("label %d = %d, want %d", p, label, want[p])
		}
	}
	if !ds.Column(0).Max.Equal(ds.Column(0).Values[3]) {
		t.Fatalf("column max %v", ds.Column(0).Max)
	}
}

func TestLoadPSVMalformed(t *testing.T) {
	for name, source := range map[string]string{
		"empty":        "",
		"only label":   "1\n",
		"ragged":       "1|2|1\n3|1\n",
		"not a number": "1|x|1\n",
		"zero label":   "1|2|0\n",
	} {
		if _, err := LoadPSV(strings.NewReader(source)); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("%s: expected malformed input, got %v", name, err)
		}
	}
}

func TestNewDatasetMalformed(t *testing.T) {
	if _, err := NewDataset(mat.NewDense(2, 1, []float64{1, 2}), []int{1}); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected malformed input for missing labels, got %v", err)
	}
	if _, err := NewDataset(&mat.Dense{}, nil); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected malformed input for an empty matrix, got %v", err)
	}
}

func TestTrainFile(t *testing.T) {
	fileName := path.Join(t.TempDir(), "train.psv")
	if err := os.WriteFile(fileName, []byte("0|-1\n1|-1\n5|1\n6|1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ensemble, err := TrainFile(context.Background(), fileName, defaultParams())
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	for _, c := range []struct {
		observation []string
		want        Label
	}{
		{[]string{"5.5"}, Positive},
		{[]string{"0.5"}, Negative},
	} {
		label, err := ensemble.ClassifyStrings(c.observation)
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if label != c.want {
			t.Fatalf("%v classified as %d, want %d", c.observation, label, c.want)
		}
	}
}
