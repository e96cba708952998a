package stats

import "time"

// DayWindow returns the first and last millisecond of at's calendar day in
// at's location.
func DayWindow(at time.Time) (time.Time, time.Time) {
	return startOfDay(at), endOfDay(at)
}

// WeekWindow returns the first millisecond of the Sunday starting at's week
// and the last millisecond of the following Saturday.
func WeekWindow(at time.Time) (time.Time, time.Time) {
	start := startOfDay(at).AddDate(0, 0, -int(at.Weekday()))
	return start, endOfDay(start.AddDate(0, 0, 6))
}

// Calendar arithmetic keeps bounds at wall-clock midnight across DST shifts.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
