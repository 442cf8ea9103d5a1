// SPDX-License-Identifier: Apache-2.0

package main

/*
#cgo CFLAGS: -I.
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"unsafe"

	"github.com/tarstars/stump_boosting/golang/stump_boost/sbl"
	"gonum.org/v1/gonum/mat"
)

var (
	handleMu   sync.Mutex
	nextHandle uint64 = 1
	ensembles         = make(map[uint64]*sbl.Ensemble)

	lastErrorMu sync.Mutex
	lastError   string

	logSilenceOnce sync.Once
)

func setLastError(err error) {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

func getLastError() string {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	return lastError
}

func storeEnsemble(e *sbl.Ensemble) uint64 {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle := nextHandle
	ensembles[handle] = e
	nextHandle++
	return handle
}

func fetchEnsemble(handle uint64) (*sbl.Ensemble, error) {
	handleMu.Lock()
	defer handleMu.Unlock()
	ensemble, ok := ensembles[handle]
	if !ok {
		return nil, errors.New("invalid ensemble handle")
	}
	return ensemble, nil
}

//export FreeModel
func FreeModel(handle C.ulonglong) {
	handleMu.Lock()
	defer handleMu.Unlock()
	delete(ensembles, uint64(handle))
}

func copyFloatSlice(ptr *C.double, length int) ([]float64, error) {
	if length < 0 {
		return nil, errors.New("negative length")
	}
	if length == 0 {
		return nil, nil
	}
	if ptr == nil {
		return nil, errors.New("null pointer for non-empty slice")
	}
	src := unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length)
	dst := make([]float64, length)
	copy(dst, src)
	return dst, nil
}

func buildDense(ptr *C.double, rows, cols C.int) (*mat.Dense, error) {
	r := int(rows)
	c := int(cols)
	if r <= 0 || c <= 0 {
		return nil, errors.New("invalid matrix dimensions")
	}
	data, err := copyFloatSlice(ptr, r*c)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(r, c, data), nil
}

func copyLabels(ptr *C.int, length int) ([]int, error) {
	if length <= 0 || ptr == nil {
		return nil, errors.New("labels are missing")
	}
	src := unsafe.Slice((*C.int)(unsafe.Pointer(ptr)), length)
	labels := make([]int, length)
	for ind, label := range src {
		labels[ind] = int(label)
	}
	return labels, nil
}

//export TrainModel
func TrainModel(
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	labelsPtr *C.int,
	thresholdSteps C.int,
	maxIterations C.int,
	targetError C.double,
	inclusiveOperators C.int,
	failOnDegenerate C.int,
) C.ulonglong {
	setLastError(nil)
	logSilenceOnce.Do(func() {
		log.SetOutput(io.Discard)
	})

	features, err := buildDense(featuresPtr, rows, cols)
	if err != nil {
		setLastError(err)
		return 0
	}
	labels, err := copyLabels(labelsPtr, int(rows))
	if err != nil {
		setLastError(err)
		return 0
	}
	ds, err := sbl.NewDataset(features, labels)
	if err != nil {
		setLastError(err)
		return 0
	}

	params := sbl.BoosterParams{
		ThresholdSteps:     int(thresholdSteps),
		MaxIterations:      int(maxIterations),
		TargetError:        float64(targetError),
		InclusiveOperators: inclusiveOperators != 0,
	}
	if failOnDegenerate != 0 {
		params.Degenerate = sbl.Fail
	}

	ensemble, err := sbl.Train(context.Background(), ds, params)
	if err != nil {
		setLastError(err)
		return 0
	}
	return C.ulonglong(storeEnsemble(ensemble))
}

//export Classify
func Classify(
	handle C.ulonglong,
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	outputPtr *C.int,
) C.int {
	setLastError(nil)
	ensemble, err := fetchEnsemble(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}

	features, err := buildDense(featuresPtr, rows, cols)
	if err != nil {
		setLastError(err)
		return 2
	}

	labels, err := ensemble.ClassifyMatrix(features)
	if err != nil {
		setLastError(err)
		return 3
	}

	if outputPtr == nil {
		setLastError(errors.New("null pointer for the output"))
		return 4
	}
	out := unsafe.Slice((*C.int)(unsafe.Pointer(outputPtr)), len(labels))
	for ind, label := range labels {
		out[ind] = C.int(label)
	}
	return 0
}

//export EnsembleSize
func EnsembleSize(handle C.ulonglong) C.int {
	setLastError(nil)
	ensemble, err := fetchEnsemble(uint64(handle))
	if err != nil {
		setLastError(err)
		return -1
	}
	return C.int(ensemble.Size())
}

//export RenderEnsemble
func RenderEnsemble(handle C.ulonglong, path, figureType *C.char) C.int {
	setLastError(nil)
	ensemble, err := fetchEnsemble(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	goFigureType := C.GoString(figureType)
	if goFigureType == "" {
		goFigureType = "svg"
	}
	if err := ensemble.RenderEnsemble(C.GoString(path), goFigureType); err != nil {
		setLastError(err)
		return 2
	}
	return 0
}

//export DumpLearningCurve
func DumpLearningCurve(handle C.ulonglong, path, description *C.char) C.int {
	setLastError(nil)
	ensemble, err := fetchEnsemble(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	if err := ensemble.DumpLearningCurve(C.GoString(path), C.GoString(description)); err != nil {
		setLastError(err)
		return 2
	}
	return 0
}

//export GetLastError
func GetLastError() *C.char {
	errStr := getLastError()
	if errStr == "" {
		return nil
	}
	return C.CString(errStr)
}

//export FreeCString
func FreeCString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

func main() {}
