package camera

import (
	"github.com/pkg/errors"
)

// ErrInvalidConfiguration is returned when camera parameters are missing, contradictory or out of range.
// Such errors are fatal to the configuration attempt only; retry with corrected input.
var ErrInvalidConfiguration = errors.New("invalid camera configuration")

// NewConfigurationError wraps ErrInvalidConfiguration with a description of the offending input.
func NewConfigurationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}
