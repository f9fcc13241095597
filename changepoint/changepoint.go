// Package changepoint defines labeled points in time where the trend of
// a monthly series is allowed to shift.
package changepoint

import "time"

type Changepoint struct {
	T    time.Time `json:"time"`
	Name string    `json:"name"`
}

func New(name string, t time.Time) Changepoint {
	return Changepoint{t, name}
}

// MonthsSince returns the changepoint position as a fractional month
// offset from start.
func (c Changepoint) MonthsSince(start time.Time) float64 {
	return float64((c.T.Year()-start.Year())*12 + int(c.T.Month()) - int(start.Month()))
}
