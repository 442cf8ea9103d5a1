package sbl

import (
	"bufio"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//FieldSeparator separates the fields of one line of a training file.
const FieldSeparator = "|"

//LoadPSV reads pipe separated lines. All fields except the last one are features,
//the last one is the label truncated to an integer. Blank lines are skipped.
func LoadPSV(reader io.Reader) (*Dataset, error) {
	scanner := bufio.NewScanner(reader)
	width := -1
	var data []float64
	var labels []int

	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, FieldSeparator)
		if width == -1 {
			if len(fields) < 2 {
				return nil, malformedf("line %d: expected at least one feature and a label, got %d fields", lineNumber, len(fields))
			}
			width = len(fields)
		}
		if len(fields) != width {
			return nil, malformedf("line %d: expected %d fields, got %d", lineNumber, width, len(fields))
		}

		for ind, field := range fields {
			val, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, malformedf("line %d field %d: %q is not a number", lineNumber, ind+1, field)
			}
			if ind == width-1 {
				labels = append(labels, int(val))
			} else {
				data = append(data, val)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "can't read training data")
	}
	if len(labels) == 0 {
		return nil, malformedf("no rows in training data")
	}

	return NewDataset(mat.NewDense(len(labels), width-1, data), labels)
}

//LoadPSVFile opens fileName and reads it with LoadPSV.
func LoadPSVFile(fileName string) (*Dataset, error) {
	log.Print("\ttry to load <", fileName, ">")
	source, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", fileName)
	}
	defer func() { _ = source.Close() }()

	ds, err := LoadPSV(source)
	if err != nil {
		return nil, errors.WithMessage(err, fileName)
	}
	ds.SetDescription(fileName)
	return ds, nil
}
