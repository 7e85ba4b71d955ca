package config

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mtxpt/phx-fix-examples/errs"
)

// Duration wraps time.Duration so YAML files can write durations as "5s" or
// "200ms" instead of raw nanosecond counts.
type Duration time.Duration

// Std returns the wrapped standard library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML accepts either a duration string or an integer nanosecond
// count.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var asInt int64
	if err := node.Decode(&asInt); err == nil {
		*d = Duration(asInt)
		return nil
	}
	var asString string
	if err := node.Decode(&asString); err != nil {
		return errs.New("", errs.CodeInvalid,
			errs.WithMessage("duration must be a string or integer"), errs.WithCause(err))
	}
	parsed, err := time.ParseDuration(asString)
	if err != nil {
		return errs.New("", errs.CodeInvalid,
			errs.WithMessage("parse duration "+asString), errs.WithCause(err))
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
