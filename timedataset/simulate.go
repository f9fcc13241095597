package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/rickar/cal/v2"
)

// Demand events for simulated pharma series. Dates are fixed-day
// approximations of the moving festivals; the simulator only cares
// about which month the observance lands in.
var (
	Diwali = &cal.Holiday{
		Name:  "Diwali",
		Type:  cal.ObservancePublic,
		Month: time.November,
		Day:   5,
		Func:  cal.CalcDayOfMonth,
	}
	Holi = &cal.Holiday{
		Name:  "Holi",
		Type:  cal.ObservancePublic,
		Month: time.March,
		Day:   14,
		Func:  cal.CalcDayOfMonth,
	}
	EidUlFitr = &cal.Holiday{
		Name:  "Eid ul-Fitr",
		Type:  cal.ObservancePublic,
		Month: time.April,
		Day:   10,
		Func:  cal.CalcDayOfMonth,
	}
)

// Series is a float slice with chainable helpers for composing
// synthetic monthly sales data in tests and examples.
type Series []float64

func (s Series) Add(src Series) Series {
	for i := range s {
		s[i] += src[i]
	}
	return s
}

// ClampMin clamps every value to be at least val. Useful for keeping
// simulated unit counts non-negative after adding noise.
func (s Series) ClampMin(val float64) Series {
	for i := range s {
		if s[i] < val {
			s[i] = val
		}
	}
	return s
}

// GenerateMonthlyT returns n consecutive month-start timestamps
// beginning at the month of start.
func GenerateMonthlyT(n int, start time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	base := MonthStart(start)
	for i := 0; i < n; i++ {
		t = append(t, base.AddDate(0, i, 0))
	}
	return t
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, n)
	for i := range y {
		y[i] = val
	}
	return Series(y)
}

// GenerateAnnualWave produces a sinusoid with a 12 month period. The
// phase offset is in months.
func GenerateAnnualWave(t []time.Time, amp, phaseMonths float64) Series {
	y := make([]float64, len(t))
	for i, tm := range t {
		y[i] = amp * math.Sin(2.0*math.Pi*(float64(tm.Month())+phaseMonths)/12.0)
	}
	return Series(y)
}

func GenerateTrend(n int, slope float64) Series {
	y := make([]float64, n)
	for i := range y {
		y[i] = slope * float64(i)
	}
	return Series(y)
}

// GenerateNoise produces deterministic gaussian noise from a fixed PCG
// seed so simulated series are reproducible across runs.
func GenerateNoise(n int, scale float64, seed uint64) Series {
	r := rand.New(rand.NewPCG(seed, seed))
	y := make([]float64, n)
	for i := range y {
		y[i] = r.NormFloat64() * scale
	}
	return Series(y)
}

// GenerateHolidayBoost adds amp to every month containing an observance
// of the given holiday.
func GenerateHolidayBoost(t []time.Time, hol *cal.Holiday, amp float64) Series {
	y := make([]float64, len(t))
	for i, tm := range t {
		_, observed := hol.Calc(tm.Year())
		if observed.Year() == tm.Year() && observed.Month() == tm.Month() {
			y[i] = amp
		}
	}
	return Series(y)
}
