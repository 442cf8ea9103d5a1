package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/tarstars/stump_boosting/golang/stump_boost/sbl"
)

func decodeConfig(srcConfig string, out interface{}) {
	file, err := os.Open(srcConfig)
	sbl.HandleError(err)
	defer func() { sbl.HandleError(file.Close()) }()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	sbl.HandleError(decoder.Decode(out))
}

//BoostConfig names the training data, either a pipe separated file or a pair of npy files,
//and the booster hyperparameters.
type BoostConfig struct {
	FileNamePSV         string  `json:"filename_psv"`
	FileNameNpyFeatures string  `json:"filename_npy_features"`
	FileNameNpyLabels   string  `json:"filename_npy_labels"`
	ThresholdSteps      int     `json:"threshold_steps"`
	MaxIterations       int     `json:"max_iterations"`
	TargetError         float64 `json:"target_error"`
	InclusiveOperators  bool    `json:"inclusive_operators"`
	FailOnDegenerate    bool    `json:"fail_on_degenerate"`
	Epsilon             float64 `json:"epsilon"`
}

func (config BoostConfig) load() *sbl.Dataset {
	if config.FileNamePSV != "" {
		ds, err := sbl.LoadPSVFile(config.FileNamePSV)
		sbl.HandleError(err)
		return ds
	}
	ds, err := sbl.ReadNpyDataset(config.FileNameNpyFeatures, config.FileNameNpyLabels)
	sbl.HandleError(err)
	return ds
}

func (config BoostConfig) params() sbl.BoosterParams {
	params := sbl.BoosterParams{
		ThresholdSteps:     config.ThresholdSteps,
		MaxIterations:      config.MaxIterations,
		TargetError:        config.TargetError,
		InclusiveOperators: config.InclusiveOperators,
		Epsilon:            config.Epsilon,
	}
	if config.FailOnDegenerate {
		params.Degenerate = sbl.Fail
	}
	return params
}

//trainEnsemble trains on the configured dataset with a progress bar over the iteration budget.
func trainEnsemble(config BoostConfig) *sbl.Ensemble {
	params := config.params()
	sbl.HandleError(params.Validate())
	ds := config.load()

	bar := pb.StartNew(params.MaxIterations)
	params.OnIteration = func(sbl.IterationReport) { bar.Increment() }
	ensemble, err := sbl.Train(context.Background(), ds, params)
	bar.Finish()
	sbl.HandleError(err)
	return ensemble
}

type TrainConfig struct {
	BoostConfig
	Observations            [][]string `json:"observations"`
	FileNameObservationsNpy string     `json:"filename_observations_npy"`
	FileNamePredictions     string     `json:"filename_predictions"`
	FileNameLearningCurve   string     `json:"filename_learning_curve"`
	FileNameGraph           string     `json:"filename_graph"`
	FigureType              string     `json:"figure_type"`
}

func train(srcConfig string) {
	var trainConfig TrainConfig
	decodeConfig(srcConfig, &trainConfig)

	ensemble := trainEnsemble(trainConfig.BoostConfig)

	for _, observation := range trainConfig.Observations {
		label, err := ensemble.ClassifyStrings(observation)
		sbl.HandleError(err)
		fmt.Printf("Data-Label[%s] = %d\n", strings.Join(observation, ", "), label)
	}

	if trainConfig.FileNameObservationsNpy != "" {
		features, err := sbl.ReadNpy(trainConfig.FileNameObservationsNpy)
		sbl.HandleError(err)
		labels, err := ensemble.ClassifyMatrix(features)
		sbl.HandleError(err)
		if trainConfig.FileNamePredictions != "" {
			sbl.HandleError(sbl.WritePredictionsNpy(trainConfig.FileNamePredictions, labels))
		}
	}

	if trainConfig.FileNameLearningCurve != "" {
		sbl.HandleError(ensemble.DumpLearningCurve(trainConfig.FileNameLearningCurve, srcConfig))
	}
	if trainConfig.FileNameGraph != "" {
		sbl.HandleError(ensemble.RenderEnsemble(trainConfig.FileNameGraph, trainConfig.FigureType))
	}
}

type LcurveConfig struct {
	BoostConfig
	Description           string `json:"description"`
	FileNameLearningCurve string `json:"filename_learning_curve"`
}

func lcurve(srcConfig string) {
	var lcurveConfig LcurveConfig
	decodeConfig(srcConfig, &lcurveConfig)

	ensemble := trainEnsemble(lcurveConfig.BoostConfig)
	sbl.HandleError(ensemble.DumpLearningCurve(lcurveConfig.FileNameLearningCurve, lcurveConfig.Description))
}

type GraphConfig struct {
	BoostConfig
	FileNameGraph string `json:"filename_graph"`
	FigureType    string `json:"figure_type"`
}

func graph(srcConfig string) {
	var graphConfig GraphConfig
	decodeConfig(srcConfig, &graphConfig)

	ensemble := trainEnsemble(graphConfig.BoostConfig)
	sbl.HandleError(ensemble.RenderEnsemble(graphConfig.FileNameGraph, graphConfig.FigureType))
}

func main() {
	runMode := flag.String("mode", "train", "you can select either 'train', 'graph' or 'lcurve' modes")
	config := flag.String("config", "stump_config.json", "a config file for the run of the program")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")

	flag.Parse()

	run, ok := map[string]func(string){
		"train":  train,
		"graph":  graph,
		"lcurve": lcurve,
	}[*runMode]
	if !ok {
		log.Fatalf("unknown mode %q", *runMode)
	}
	run(*config)

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		sbl.HandleError(err)
		defer func() { sbl.HandleError(f.Close()) }()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}
