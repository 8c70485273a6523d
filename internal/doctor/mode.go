package doctor

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the workflow.
type Mode string

const (
	ModeStandalone Mode = "standalone"
	ModeSimulated  Mode = "simulated"
	ModeLive       Mode = "live"
)

// ErrInvalidMode is returned for an unrecognized mode string.
var ErrInvalidMode = errors.New("invalid mode")

// ParseMode accepts the canonical names plus "development" for simulated and
// "github" for live, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standalone":
		return ModeStandalone, nil
	case "simulated", "development":
		return ModeSimulated, nil
	case "live", "github":
		return ModeLive, nil
	default:
		return "", fmt.Errorf("%w %q: choose standalone, simulated or live", ErrInvalidMode, s)
	}
}
