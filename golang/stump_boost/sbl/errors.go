package sbl

import (
	"log"

	"github.com/pkg/errors"
)

// Error kinds returned by the library. Callers match them with errors.Is, the returned errors
// carry the context of the failure on top of the kind.
var (
	//ErrMalformedInput reports a dataset or an observation that can not be interpreted.
	ErrMalformedInput = errors.New("malformed input")
	//ErrInvalidHyperparameter reports training parameters outside of their domains.
	ErrInvalidHyperparameter = errors.New("invalid hyperparameter")
	//ErrDegenerateWeightedError reports a weighted error of 0 or 1 when the voting weight is computed.
	ErrDegenerateWeightedError = errors.New("degenerate weighted error")
	//ErrUnsupportedOperation reports a stump operator outside of the known set.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	//ErrTrainingFinished is returned by Step once the booster reached a terminal state.
	ErrTrainingFinished = errors.New("training finished")
)

func malformedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedInput, format, args...)
}

func degeneratef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDegenerateWeightedError, format, args...)
}

func invalidParamf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidHyperparameter, format, args...)
}

//HandleError stops the program on a non-nil error. It is meant for binaries only.
func HandleError(err error) {
	if err != nil {
		log.Panic(err)
	}
}
