package ml

import "errors"

// Error taxonomy shared by the model and training code. Callers classify
// failures with errors.Is; everything else wraps one of these.
var (
	// ErrConfig marks invalid configuration or empty required inputs.
	// Always raised before any model work starts.
	ErrConfig = errors.New("invalid configuration")

	// ErrDataQuality marks unusable rows. Recovered locally by skipping
	// the row; fatal only when too few rows survive.
	ErrDataQuality = errors.New("bad data")

	// ErrModelFit marks a numeric fit failure (a fold, a family, or the
	// whole selection when every candidate failed).
	ErrModelFit = errors.New("model fit failed")

	// ErrArtifactIO marks persistence failures at the artifact boundary.
	ErrArtifactIO = errors.New("artifact io failed")
)
