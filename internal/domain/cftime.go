package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// cfUnitsRe parses CF time units, e.g. "days since 0001-01-01 00:00:00".
var cfUnitsRe = regexp.MustCompile(`^\s*(\w+)\s+since\s+(-?\d{1,4})-(\d{1,2})-(\d{1,2})(?:[T ](\d{1,2}):(\d{1,2})(?::(\d{1,2}(?:\.\d*)?))?)?`)

// gregorianReformJDN is the first Julian day number of the Gregorian
// calendar (1582-10-15) in the CF "standard" calendar.
const gregorianReformJDN = 2299161

var (
	noleapMonths  = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	allLeapMonths = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
)

// DecodeTime converts raw CF time offsets into calendar dates. Supported
// calendars: standard/gregorian (Julian before 1582-10-15),
// proleptic_gregorian, julian, noleap/365_day, all_leap/366_day, 360_day.
// An empty calendar means standard.
func DecodeTime(values []float64, units, calendar string) ([]Date, error) {
	m := cfUnitsRe.FindStringSubmatch(units)
	if m == nil {
		return nil, fmt.Errorf("decode time: unsupported units %q", units)
	}

	var perDay float64
	switch strings.ToLower(m[1]) {
	case "day", "days", "d":
		perDay = 1
	case "hour", "hours", "hr", "h":
		perDay = 24
	case "minute", "minutes", "min":
		perDay = 24 * 60
	case "second", "seconds", "sec", "s":
		perDay = 24 * 60 * 60
	default:
		return nil, fmt.Errorf("decode time: unsupported unit %q in %q", m[1], units)
	}

	base := Date{Year: atoi(m[2]), Month: atoi(m[3]), Day: atoi(m[4])}
	var baseFrac float64
	if m[5] != "" {
		sec := 0.0
		if m[7] != "" {
			sec, _ = strconv.ParseFloat(m[7], 64)
		}
		baseFrac = (float64(atoi(m[5]))*3600 + float64(atoi(m[6]))*60 + sec) / 86400
	}

	cal, err := newCalendar(calendar)
	if err != nil {
		return nil, err
	}
	if err := cal.check(base); err != nil {
		return nil, fmt.Errorf("decode time: reference date in %q: %w", units, err)
	}
	origin := cal.toDays(base)

	out := make([]Date, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("decode time: non-finite value at index %d", i)
		}
		// The epsilon absorbs float noise such as 30.999999 for an offset of 31 days.
		offset := int(math.Floor(baseFrac + v/perDay + 1e-9))
		out[i] = cal.fromDays(origin + offset)
	}
	return out, nil
}

// calendar maps dates to a running day count and back.
type calendar interface {
	toDays(d Date) int
	fromDays(n int) Date
	check(d Date) error
}

func newCalendar(name string) (calendar, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "gregorian":
		return mixedCalendar{}, nil
	case "proleptic_gregorian":
		return gregorianCalendar{}, nil
	case "julian":
		return julianCalendar{}, nil
	case "noleap", "365_day":
		return fixedCalendar{months: noleapMonths}, nil
	case "all_leap", "366_day":
		return fixedCalendar{months: allLeapMonths}, nil
	case "360_day":
		return fixedCalendar{months: [12]int{30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30}}, nil
	default:
		return nil, fmt.Errorf("decode time: unsupported calendar %q", name)
	}
}

// fixedCalendar has the same month lengths every year.
type fixedCalendar struct {
	months [12]int
}

func (c fixedCalendar) yearLen() int {
	n := 0
	for _, m := range c.months {
		n += m
	}
	return n
}

func (c fixedCalendar) check(d Date) error {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > c.months[d.Month-1] {
		return fmt.Errorf("invalid date %s", d)
	}
	return nil
}

func (c fixedCalendar) toDays(d Date) int {
	n := d.Year * c.yearLen()
	for m := 0; m < d.Month-1; m++ {
		n += c.months[m]
	}
	return n + d.Day - 1
}

func (c fixedCalendar) fromDays(n int) Date {
	yl := c.yearLen()
	year := floorDiv(n, yl)
	rem := n - year*yl
	month := 0
	for rem >= c.months[month] {
		rem -= c.months[month]
		month++
	}
	return Date{Year: year, Month: month + 1, Day: rem + 1}
}

// gregorianCalendar is the proleptic Gregorian calendar, counted in Julian
// day numbers.
type gregorianCalendar struct{}

func (gregorianCalendar) check(d Date) error { return checkMonthDay(d, isGregorianLeap) }

func (gregorianCalendar) toDays(d Date) int { return gregorianJDN(d) }

func (gregorianCalendar) fromDays(n int) Date { return gregorianFromJDN(n) }

type julianCalendar struct{}

func (julianCalendar) check(d Date) error { return checkMonthDay(d, isJulianLeap) }

func (julianCalendar) toDays(d Date) int { return julianJDN(d) }

func (julianCalendar) fromDays(n int) Date { return julianFromJDN(n) }

// mixedCalendar is the CF standard calendar: Julian up to 1582-10-04,
// Gregorian from 1582-10-15.
type mixedCalendar struct{}

func (mixedCalendar) check(d Date) error {
	if d.Year == 1582 && d.Month == 10 && d.Day > 4 && d.Day < 15 {
		return fmt.Errorf("date %s falls in the Gregorian reform gap", d)
	}
	if dateBefore(d, Date{Year: 1582, Month: 10, Day: 15}) {
		return checkMonthDay(d, isJulianLeap)
	}
	return checkMonthDay(d, isGregorianLeap)
}

func (mixedCalendar) toDays(d Date) int {
	if dateBefore(d, Date{Year: 1582, Month: 10, Day: 15}) {
		return julianJDN(d)
	}
	return gregorianJDN(d)
}

func (mixedCalendar) fromDays(n int) Date {
	if n < gregorianReformJDN {
		return julianFromJDN(n)
	}
	return gregorianFromJDN(n)
}

func gregorianJDN(d Date) int {
	a := floorDiv(14-d.Month, 12)
	y := d.Year + 4800 - a
	m := d.Month + 12*a - 3
	return d.Day + floorDiv(153*m+2, 5) + 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) - 32045
}

func julianJDN(d Date) int {
	a := floorDiv(14-d.Month, 12)
	y := d.Year + 4800 - a
	m := d.Month + 12*a - 3
	return d.Day + floorDiv(153*m+2, 5) + 365*y + floorDiv(y, 4) - 32083
}

func gregorianFromJDN(j int) Date {
	a := j + 32044
	b := floorDiv(4*a+3, 146097)
	c := a - floorDiv(146097*b, 4)
	return civilFromParts(c, 100*b)
}

func julianFromJDN(j int) Date {
	return civilFromParts(j+32082, 0)
}

func civilFromParts(c, century int) Date {
	d := floorDiv(4*c+3, 1461)
	e := c - floorDiv(1461*d, 4)
	m := floorDiv(5*e+2, 153)
	return Date{
		Year:  century + d - 4800 + floorDiv(m, 10),
		Month: m + 3 - 12*floorDiv(m, 10),
		Day:   e - floorDiv(153*m+2, 5) + 1,
	}
}

func checkMonthDay(d Date, leap func(int) bool) error {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return fmt.Errorf("invalid date %s", d)
	}
	days := noleapMonths[d.Month-1]
	if d.Month == 2 && leap(d.Year) {
		days = 29
	}
	if d.Day > days {
		return fmt.Errorf("invalid date %s", d)
	}
	return nil
}

func isGregorianLeap(y int) bool { return y%4 == 0 && (y%100 != 0 || y%400 == 0) }

func isJulianLeap(y int) bool { return y%4 == 0 }

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
