package model

import "fmt"

// JobKind identifies a class of compute-heavy background work with known
// resource characteristics.
type JobKind string

const (
	JobBacktest      JobKind = "backtest"
	JobModelTraining JobKind = "model_training"
	JobPrediction    JobKind = "prediction"
)

// String returns the string representation of the job kind.
func (k JobKind) String() string {
	return string(k)
}

// Valid returns true if the kind is one of the recognized job kinds.
func (k JobKind) Valid() bool {
	switch k {
	case JobBacktest, JobModelTraining, JobPrediction:
		return true
	}
	return false
}

// ParseJobKind converts a string to a JobKind, rejecting unknown values.
func ParseJobKind(s string) (JobKind, error) {
	k := JobKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown job kind %q", s)
	}
	return k, nil
}
