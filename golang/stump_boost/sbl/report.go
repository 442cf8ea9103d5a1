package sbl

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/pkg/errors"
)

//LearningCurveDump is the layout of the learning curve file.
type LearningCurveDump struct {
	Description string            `json:"description"`
	Values      []float64         `json:"values"`
	Iterations  []IterationReport `json:"iterations"`
}

//DumpLearningCurve writes the training error after every iteration together with the stumps found.
func (e *Ensemble) DumpLearningCurve(filenameLearningCurve, description string) (err error) {
	destination, err := os.Create(filenameLearningCurve)
	if err != nil {
		return errors.Wrapf(err, "can't open %s to write", filenameLearningCurve)
	}
	defer func() {
		if closeErr := destination.Close(); err == nil {
			err = closeErr
		}
	}()

	learningCurveDump := LearningCurveDump{
		Description: description,
		Values:      e.LearningCurve,
		Iterations:  e.Reports,
	}
	bytesResult, err := json.MarshalIndent(learningCurveDump, "", "  ")
	if err != nil {
		return err
	}
	_, err = destination.Write(bytesResult)
	return err
}

//GraphDescription returns the description of a stump for rendering as a graph node.
func (m Member) GraphDescription() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("f_%d %v %v\n", m.Stump.FeatureIndex(), m.Stump.Operator(), m.Stump.Threshold()))
	sb.WriteString(fmt.Sprintln("error: ", m.Stump.WeightedError()))
	sb.WriteString(fmt.Sprint("alpha: ", m.Alpha))
	return sb.String()
}

//DrawGraph builds a graph with one node per stump, all of them feeding a final vote node.
func (e *Ensemble) DrawGraph() (*graphviz.Graphviz, *cgraph.Graph, error) {
	graphViz := graphviz.New()
	graph, err := graphViz.Graph()
	if err != nil {
		return nil, nil, err
	}

	vote, err := graph.CreateNode("vote")
	if err != nil {
		return nil, nil, err
	}
	vote.Set("label", fmt.Sprintf("sign(sum)\n%d stumps", len(e.Members)))
	vote.Set("shape", "box")

	for ind, member := range e.Members {
		node, err := graph.CreateNode(fmt.Sprint("stump_", ind))
		if err != nil {
			return nil, nil, err
		}
		node.Set("label", member.GraphDescription())
		if _, err := graph.CreateEdge(fmt.Sprint(ind), node, vote); err != nil {
			return nil, nil, err
		}
	}
	return graphViz, graph, nil
}

//RenderEnsemble draws the ensemble into filename. figureType is one of png, svg or jpg.
func (e *Ensemble) RenderEnsemble(filename, figureType string) error {
	graphvizType, ok := map[string]graphviz.Format{
		"png": graphviz.PNG,
		"svg": graphviz.SVG,
		"jpg": graphviz.JPG,
	}[figureType]
	if !ok {
		return errors.Errorf("unknown figure type %q", figureType)
	}

	graphViz, graph, err := e.DrawGraph()
	if err != nil {
		return err
	}
	defer func() { _ = graph.Close() }()
	return graphViz.RenderFilename(graph, graphvizType, filename)
}
