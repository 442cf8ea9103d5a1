package sbl

import (
	"strconv"

	"github.com/shopspring/decimal"
)

//thresholdScale is the number of significant decimal places kept in a threshold step
//below the leading digit of the column range.
const thresholdScale = 16

//ThresholdRange is an iterator over the half interval [min-step, max+step) of a column
//with step = (max-min)/steps. A constant column yields its single value once.
type ThresholdRange struct {
	begin, end, step, pos decimal.Decimal
	constant, exhausted   bool
}

//NewThresholdRange initializes a new iterator over the candidate thresholds of a column.
func NewThresholdRange(column ColumnStats, steps int) *ThresholdRange {
	if column.Max.Equal(column.Min) {
		return &ThresholdRange{begin: column.Min, end: column.Max, step: decimal.Zero, pos: column.Min, constant: true}
	}
	width := column.Max.Sub(column.Min)
	step := width.DivRound(decimal.NewFromInt(int64(steps)), stepScale(width, steps))
	begin := column.Min.Sub(step)
	return &ThresholdRange{begin: begin, end: column.Max.Add(step), step: step, pos: begin}
}

//stepScale keeps thresholdScale digits after the leading digit of width/steps, so a
//column with a tiny range never gets a zero step.
func stepScale(width decimal.Decimal, steps int) int32 {
	order := int32(width.NumDigits()) + width.Exponent() - 1
	scale := int32(thresholdScale + len(strconv.Itoa(steps)))
	if order < 0 {
		scale -= order
	}
	return scale
}

//Step returns the distance between two consecutive thresholds.
func (r *ThresholdRange) Step() decimal.Decimal {
	return r.step
}

//HasNext checks whether there are more thresholds in the iterator.
func (r *ThresholdRange) HasNext() bool {
	if r.exhausted {
		return false
	}
	if r.constant {
		return true
	}
	return r.pos.LessThan(r.end)
}

//GetNext returns the current threshold and moves the iterator to the next position.
func (r *ThresholdRange) GetNext() decimal.Decimal {
	val := r.pos
	if r.constant {
		r.exhausted = true
	}
	r.pos = r.pos.Add(r.step)
	return val
}

//Len counts the thresholds of a fresh iterator with the same bounds.
func (r *ThresholdRange) Len() int {
	fresh := ThresholdRange{begin: r.begin, end: r.end, step: r.step, pos: r.begin, constant: r.constant}
	n := 0
	for ; fresh.HasNext(); n++ {
		fresh.GetNext()
	}
	return n
}
