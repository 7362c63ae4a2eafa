package main

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp"
	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// result is the JSON document written by every explain command.
type result struct {
	Operation  string                 `json:"operation"`
	SessionID  string                 `json:"session_id"`
	QoI        string                 `json:"qoi"`
	Measure    string                 `json:"measure"`
	Seed       uint64                 `json:"seed"`
	Features   []string               `json:"features"`
	Rows       []int                  `json:"rows,omitempty"`
	Influences [][]float64            `json:"influences,omitempty"`
	Mean       *float64               `json:"mean,omitempty"`
	Summary    []sharp.FeatureSummary `json:"summary,omitempty"`
}

func newResult(op string, s *sharp.Session) *result {
	return &result{
		Operation: op,
		SessionID: s.ID(),
		QoI:       s.QoI().Name(),
		Measure:   s.Measure().Name(),
		Seed:      s.Seed(),
		Features:  s.FeatureNames(),
	}
}

func matrixRows(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

// write encodes v as JSON to the configured output file or to stdout.
func (a *app) write(v any) error {
	var (
		data []byte
		err  error
	)
	if a.cfg.Output.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}
	data = append(data, '\n')

	if p := a.cfg.Output.Path; p != "" {
		if err := os.WriteFile(filepath.Clean(p), data, 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", p)
		}
		a.logger.Info("Result written", "path", p)
		return nil
	}
	_, err = a.stdout.Write(data)
	return err
}
