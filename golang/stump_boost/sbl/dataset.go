package sbl

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//Label is a binary class label, either Positive or Negative.
type Label int

const (
	Negative Label = -1
	Positive Label = 1
)

//ColumnStats keeps one feature column in decimal form together with its extremes.
type ColumnStats struct {
	Values   []decimal.Decimal
	Min, Max decimal.Decimal
}

//Dataset is the read-only training data: a features matrix, the labels and the column statistics
//that the stump search needs on every iteration.
type Dataset struct {
	features    *mat.Dense
	labels      []Label
	columns     []ColumnStats
	Description *string
}

//NewDataset validates the features matrix and the labels and precomputes column statistics.
//The matrix is copied, later changes to it do not affect the dataset.
func NewDataset(features *mat.Dense, labels []int) (*Dataset, error) {
	if features == nil || features.IsEmpty() {
		return nil, malformedf("empty features matrix")
	}
	h, w := features.Dims()
	if len(labels) != h {
		return nil, malformedf("the number of labels %d is not equal to the number of rows %d", len(labels), h)
	}

	ds := &Dataset{
		features: mat.DenseCopyOf(features),
		labels:   make([]Label, h),
		columns:  make([]ColumnStats, w),
	}
	for p, label := range labels {
		if label != int(Positive) && label != int(Negative) {
			return nil, malformedf("row %d has label %d, only -1 and +1 are allowed", p, label)
		}
		ds.labels[p] = Label(label)
	}

	column := make([]float64, h)
	for q := 0; q < w; q++ {
		mat.Col(column, q, ds.features)
		stats := ColumnStats{Values: make([]decimal.Decimal, h)}
		for p, val := range column {
			if math.IsNaN(val) || math.IsInf(val, 0) {
				return nil, malformedf("row %d column %d holds a non-finite value", p, q)
			}
			stats.Values[p] = decimal.NewFromFloat(val)
		}
		stats.Min = decimal.NewFromFloat(floats.Min(column))
		stats.Max = decimal.NewFromFloat(floats.Max(column))
		ds.columns[q] = stats
	}
	return ds, nil
}

//SetDescription names the dataset in log messages.
func (ds *Dataset) SetDescription(description string) {
	ds.Description = &description
}

func (ds *Dataset) description() string {
	if ds.Description == nil {
		return ""
	}
	return *ds.Description
}

//Rows returns the number of observations.
func (ds *Dataset) Rows() int {
	h, _ := ds.features.Dims()
	return h
}

//Features returns the number of feature columns.
func (ds *Dataset) Features() int {
	_, w := ds.features.Dims()
	return w
}

//Column returns the statistics of the column q. The result must not be modified.
func (ds *Dataset) Column(q int) ColumnStats {
	return ds.columns[q]
}

//Labels returns a copy of the label vector.
func (ds *Dataset) Labels() []Label {
	return append([]Label(nil), ds.labels...)
}

//Row returns a copy of the observation p.
func (ds *Dataset) Row(p int) []float64 {
	return mat.Row(nil, p, ds.features)
}

//Matrix returns a copy of the features matrix.
func (ds *Dataset) Matrix() *mat.Dense {
	return mat.DenseCopyOf(ds.features)
}
