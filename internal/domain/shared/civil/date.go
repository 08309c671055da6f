package civil

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidDate = errors.New("civil: invalid date, want YYYY-MM-DD")

// Date is a calendar day without time-of-day or location. Values are
// comparable and usable as map keys. Collaborators own any timezone-aware
// persistence; dates cross service boundaries in this form.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

func Today(now time.Time) Date {
	return DateOf(now)
}

func Parse(value string) (Date, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return DateOf(t), nil
}

// MustParse is for fixtures and tests only.
func MustParse(value string) Date {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return d.Time().Format(time.DateOnly)
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Next() Date {
	return d.AddDays(1)
}

func (d Date) Prev() Date {
	return d.AddDays(-1)
}

func (d Date) Compare(other Date) int {
	return d.Time().Compare(other.Time())
}

func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// DaysUntil counts the days from d to other; negative when other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// Range enumerates the inclusive interval [d, endInclusive] in ascending
// order. An inverted interval yields nothing.
func (d Date) Range(endInclusive Date) []Date {
	if d.After(endInclusive) {
		return nil
	}
	out := make([]Date, 0, d.DaysUntil(endInclusive)+1)
	for curr := d; !curr.After(endInclusive); curr = curr.Next() {
		out = append(out, curr)
	}
	return out
}

// Min and Max order two dates, used when a drag anchor may come after the
// cursor.
func Min(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

func Max(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(d Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

func (m Month) First() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

func (m Month) Last() Date {
	return m.AddMonths(1).First().Prev()
}

func (m Month) AddMonths(n int) Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Compare(other Month) int {
	if m.Year != other.Year {
		if m.Year < other.Year {
			return -1
		}
		return 1
	}
	if m.Month != other.Month {
		if m.Month < other.Month {
			return -1
		}
		return 1
	}
	return 0
}

func (m Month) Before(other Month) bool {
	return m.Compare(other) < 0
}

func (m Month) After(other Month) bool {
	return m.Compare(other) > 0
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// ParseMonth parses a YYYY-MM month.
func ParseMonth(value string) (Month, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Month{}, ErrInvalidDate
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}
