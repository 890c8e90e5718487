package activity

import (
	"fmt"
	"time"
)

// FormatHMS renders whole seconds as HH:MM:SS. Hours are not capped at 24.
func FormatHMS(sec int64) string {
	if sec < 0 {
		sec = 0
	}
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatDuration renders a duration as HH:MM:SS, flooring sub-second
// remainders.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return FormatHMS(int64(d / time.Second))
}

// WholeSeconds rounds a duration to the nearest whole second, as exported
// rows report it.
func WholeSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d.Round(time.Second) / time.Second)
}
