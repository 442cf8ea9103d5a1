package sbl

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

//ReadNpy reads a two dimensional npy file into a dense matrix.
func ReadNpy(fileName string) (*mat.Dense, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", fileName)
	}
	defer func() { _ = f.Close() }()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, malformedf("%s: %v", fileName, err)
	}

	denseMat := &mat.Dense{}
	if err := r.Read(denseMat); err != nil {
		return nil, malformedf("%s: %v", fileName, err)
	}
	return denseMat, nil
}

//ReadNpyLabels reads the labels vector. Values are truncated to integers.
func ReadNpyLabels(fileName string) ([]int, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", fileName)
	}
	defer func() { _ = f.Close() }()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, malformedf("%s: %v", fileName, err)
	}

	var raw []float64
	if err := r.Read(&raw); err != nil {
		return nil, malformedf("%s: %v", fileName, err)
	}
	labels := make([]int, len(raw))
	for ind, val := range raw {
		labels[ind] = int(val)
	}
	return labels, nil
}

//ReadNpyDataset reads features and labels stored in two npy files and unites them into a Dataset.
func ReadNpyDataset(fileNameFeatures, fileNameLabels string) (*Dataset, error) {
	log.Print("\ttry to load features <", fileNameFeatures, ">")
	features, err := ReadNpy(fileNameFeatures)
	if err != nil {
		return nil, err
	}
	log.Print("\ttry to load labels <", fileNameLabels, ">")
	labels, err := ReadNpyLabels(fileNameLabels)
	if err != nil {
		return nil, err
	}

	ds, err := NewDataset(features, labels)
	if err != nil {
		return nil, err
	}
	ds.SetDescription(fileNameFeatures)
	return ds, nil
}

//WritePredictionsNpy stores labels as an N x 1 float64 npy array.
func WritePredictionsNpy(fileName string, labels []Label) (err error) {
	if len(labels) == 0 {
		return errors.New("no predictions to write")
	}
	dst, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "can't open %s to write", fileName)
	}
	defer func() {
		if closeErr := dst.Close(); err == nil {
			err = closeErr
		}
	}()

	prediction := mat.NewDense(len(labels), 1, nil)
	for ind, label := range labels {
		prediction.Set(ind, 0, float64(label))
	}
	return npyio.Write(dst, prediction)
}
