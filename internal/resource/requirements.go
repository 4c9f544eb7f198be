package resource

import (
	"fmt"

	"github.com/me/quantsched/pkg/model"
)

// taskRequirements maps each job kind to its expected footprint. These are
// realistic estimates based on observed usage: backtests stay under 500MB,
// gradient-boosting training needs 1-2GB, inference is lightweight.
// The table is constant for the process lifetime.
var taskRequirements = map[model.JobKind]model.Requirement{
	model.JobBacktest:      {CPUCores: 1.0, RAMGB: 0.5},
	model.JobModelTraining: {CPUCores: 2.0, RAMGB: 1.5},
	model.JobPrediction:    {CPUCores: 0.5, RAMGB: 0.3},
}

// RequirementFor returns the resource requirement for a job kind.
func RequirementFor(kind model.JobKind) (model.Requirement, error) {
	req, ok := taskRequirements[kind]
	if !ok {
		return model.Requirement{}, fmt.Errorf("no resource requirement for job kind %q", kind)
	}
	return req, nil
}
