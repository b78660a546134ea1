package sim

import (
	"log"
)

// A LogHook is a hook that is resonsible for recording information from the
// simulation
type LogHook interface {
	Hook
}

// LogHookBase proovides the common logic for all LogHooks
type LogHookBase struct {
	*log.Logger
}

// NewLogHookBase creates a LogHookBase that writes with the given logger. A
// nil logger falls back to the standard logger.
func NewLogHookBase(logger *log.Logger) LogHookBase {
	if logger == nil {
		logger = log.Default()
	}

	return LogHookBase{Logger: logger}
}
