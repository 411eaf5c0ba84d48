package prompt

import (
	"errors"
	"strings"
)

// Mode selects the prompt template.
type Mode string

const (
	ModeInitial Mode = "initial"
	ModeRefine  Mode = "refine"
)

// ErrInvalidMode is returned for a mode string that is not recognized.
var ErrInvalidMode = errors.New("prompt mode is invalid")

// ParseMode normalizes a mode string. Empty means initial and "boost" is
// accepted as refine.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ModeInitial):
		return ModeInitial, nil
	case string(ModeRefine), "boost":
		return ModeRefine, nil
	default:
		return "", ErrInvalidMode
	}
}

func (m Mode) String() string { return string(m) }
