package leave

import (
	"time"

	leaveerrors "go-leaveflow/internal/leave/errors"
)

// ChargedDays converts a date range into the day count a request is charged.
// Both dates are normalized to midnight before differencing. Calendar mode
// counts every day inclusive of both ends; business mode skips Saturdays and
// Sundays. A valid range is always charged at least one day, even when it
// covers only a weekend in business mode.
func ChargedDays(start, end time.Time, businessDaysOnly bool) (float64, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)

	if end.Before(start) {
		return 0, leaveerrors.ErrInvalidDateRange
	}

	var days float64
	if businessDaysOnly {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			wd := d.Weekday()
			if wd != time.Saturday && wd != time.Sunday {
				days++
			}
		}
	} else {
		days = float64(int(end.Sub(start).Hours()/24)) + 1
	}

	if days < 1 {
		days = 1
	}
	return days, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
