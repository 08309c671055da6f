package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidClock = errors.New("schedule: invalid clock value, want HH:MM or HH:MM:SS")

// Rentable hours run from 05:00 to 25:00 so that an evening rental ending
// after midnight stays attached to the same calendar day. Encoded hours 24
// and 25 therefore denote 00:00 and 01:00 of the following day.
const (
	RentalDayStart = 5.0
	RentalDayEnd   = 25.0
)

// ClockRange is a half-hour-granularity time-of-day interval. Start and End
// use the numeric encoding produced by ParseClock (9.5 means 09:30).
type ClockRange struct {
	Start float64
	End   float64
}

func (r ClockRange) Valid() bool {
	return r.Start < r.End
}

func (r ClockRange) String() string {
	return FormatClockWrapped(r.Start) + "-" + FormatClockWrapped(r.End)
}

// ParseClock converts "HH:MM" or "HH:MM:SS" to the numeric encoding:
// hours plus 0.5 when minutes reach 30. Minute values other than 00 and 30
// are truncated to their half-hour bucket, never rounded up; seconds are
// ignored. The encoding is lossy below 30-minute resolution and callers
// must not rely on round-tripping arbitrary minute values.
func ParseClock(value string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 25 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	encoded := float64(hours)
	if minutes >= 30 {
		encoded += 0.5
	}
	return encoded, nil
}

// FormatClock renders the numeric encoding back to "HH:MM".
func FormatClock(encoded float64) string {
	hours := int(encoded)
	minutes := "00"
	if encoded != float64(hours) {
		minutes = "30"
	}
	return fmt.Sprintf("%02d:%s", hours, minutes)
}

// FormatClockWrapped is FormatClock with day-boundary wraparound: encoded
// hours 24 and 25 map to 00 and 01 of the next day.
func FormatClockWrapped(encoded float64) string {
	hours := int(encoded)
	switch hours {
	case 24:
		hours = 0
	case 25:
		hours = 1
	}
	minutes := "00"
	if encoded != float64(int(encoded)) {
		minutes = "30"
	}
	return fmt.Sprintf("%02d:%s", hours, minutes)
}

// OnHalfHour reports whether the clock string sits exactly on a half-hour
// boundary, which template slots require.
func OnHalfHour(value string) bool {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 {
		return false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return minutes == 0 || minutes == 30
}
