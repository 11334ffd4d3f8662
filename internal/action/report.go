package action

import (
	"context"
	"errors"
	"time"

	"github.com/tas33n/DroidWright/internal/model"
)

// Step statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Policy controls how Run reacts to a failing step.
type Policy struct {
	StopOnError bool
}

// Report is the outcome of running an action sequence.
type Report struct {
	OK        bool         `yaml:"ok"              json:"ok"`
	Steps     int          `yaml:"steps"           json:"steps"`
	Completed int          `yaml:"completed"       json:"completed"`
	Skipped   int          `yaml:"skipped"         json:"skipped"`
	Error     string       `yaml:"error,omitempty" json:"error,omitempty"`
	Results   []StepResult `yaml:"results"         json:"results"`
}

// StepResult is the output for a single step within a sequence.
type StepResult struct {
	Step    int          `yaml:"step"              json:"step"`
	Action  string       `yaml:"action"            json:"action"`
	Status  string       `yaml:"status"            json:"status"`
	Error   string       `yaml:"error,omitempty"   json:"error,omitempty"`
	Point   *model.Point `yaml:"point,omitempty"   json:"point,omitempty"`
	Found   *bool        `yaml:"found,omitempty"   json:"found,omitempty"`
	Elapsed string       `yaml:"elapsed,omitempty" json:"elapsed,omitempty"`
}

// Run executes actions strictly in order. Unknown actions are skipped;
// failing steps are recorded and, unless the policy says otherwise,
// execution continues with the next step. Cancellation of ctx always stops
// the run.
func (d *Dispatcher) Run(ctx context.Context, actions []Action, policy Policy) Report {
	rep := Report{Steps: len(actions), Results: make([]StepResult, 0, len(actions))}
	failed := false

	for i, a := range actions {
		step := i + 1
		if err := ctx.Err(); err != nil {
			rep.Error = err.Error()
			failed = true
			break
		}

		start := time.Now()
		out, err := d.Execute(ctx, a)
		res := StepResult{
			Step:    step,
			Action:  string(a.Kind()),
			Point:   out.Point,
			Found:   out.Found,
			Elapsed: time.Since(start).Round(time.Millisecond).String(),
		}

		switch {
		case err != nil:
			var se *StepError
			if errors.As(err, &se) {
				se.Step = step
			}
			res.Status = StatusError
			res.Error = err.Error()
			failed = true
			d.log.Error().Err(err).Int("step", step).Str("action", res.Action).Msg("step failed")
		case out.Skipped:
			res.Status = StatusSkipped
			rep.Skipped++
		default:
			res.Status = StatusOK
			rep.Completed++
			d.log.Debug().Int("step", step).Str("action", res.Action).Str("elapsed", res.Elapsed).Msg("step done")
		}
		rep.Results = append(rep.Results, res)

		if err != nil && (policy.StopOnError || ctx.Err() != nil) {
			rep.Error = res.Error
			break
		}
	}

	rep.OK = !failed
	return rep
}
