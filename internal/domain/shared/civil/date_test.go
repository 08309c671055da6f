package civil

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseAndString(t *testing.T) {
	t.Parallel()

	d, err := Parse("2025-06-09")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if d.String() != "2025-06-09" {
		t.Fatalf("String() = %q", d.String())
	}
	if d.Weekday() != time.Monday {
		t.Fatalf("2025-06-09 weekday = %s, want Monday", d.Weekday())
	}
	if _, err := Parse("2025-6-9"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestDateOfDropsTimeAndLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+5", 5*3600)
	d := DateOf(time.Date(2025, 6, 9, 23, 45, 0, 0, loc))
	if d != MustParse("2025-06-09") {
		t.Fatalf("DateOf = %s, want 2025-06-09", d)
	}
}

func TestRangeInclusive(t *testing.T) {
	t.Parallel()

	got := MustParse("2025-06-28").Range(MustParse("2025-07-02"))
	if len(got) != 5 {
		t.Fatalf("range length %d, want 5", len(got))
	}
	if got[0] != MustParse("2025-06-28") || got[4] != MustParse("2025-07-02") {
		t.Fatalf("range endpoints %s..%s", got[0], got[4])
	}
	if inverted := MustParse("2025-07-02").Range(MustParse("2025-06-28")); inverted != nil {
		t.Fatalf("inverted range should be nil, got %v", inverted)
	}
}

func TestCompareMinMax(t *testing.T) {
	t.Parallel()

	a := MustParse("2025-06-01")
	b := MustParse("2025-06-02")
	if !a.Before(b) || b.Before(a) || !b.After(a) {
		t.Fatal("ordering broken")
	}
	if Min(a, b) != a || Max(a, b) != b || Min(b, a) != a {
		t.Fatal("min/max broken")
	}
	if a.DaysUntil(b) != 1 || b.DaysUntil(a) != -1 {
		t.Fatalf("DaysUntil = %d/%d", a.DaysUntil(b), b.DaysUntil(a))
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	type payload struct {
		Day Date `json:"day"`
	}
	raw, err := json.Marshal(payload{Day: MustParse("2025-06-09")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"day":"2025-06-09"}` {
		t.Fatalf("marshalled %s", raw)
	}
	var back payload
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Day != MustParse("2025-06-09") {
		t.Fatalf("round-trip produced %s", back.Day)
	}
}

func TestMonthArithmetic(t *testing.T) {
	t.Parallel()

	m := Month{Year: 2025, Month: time.January}
	if got := m.AddMonths(-1); got != (Month{Year: 2024, Month: time.December}) {
		t.Fatalf("AddMonths(-1) = %s", got)
	}
	if got := m.AddMonths(12); got != (Month{Year: 2026, Month: time.January}) {
		t.Fatalf("AddMonths(12) = %s", got)
	}
	if m.First() != MustParse("2025-01-01") || m.Last() != MustParse("2025-01-31") {
		t.Fatalf("month bounds %s..%s", m.First(), m.Last())
	}
	feb := Month{Year: 2024, Month: time.February}
	if feb.Last() != MustParse("2024-02-29") {
		t.Fatalf("leap February last = %s", feb.Last())
	}
	if !m.Before(feb) || feb.After(feb) {
		t.Fatal("month ordering broken")
	}
}
