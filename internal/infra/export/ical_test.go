package export

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
)

func TestRenderCalendar(t *testing.T) {
	t.Parallel()

	got := string(Render(Calendar{
		TrailerID:    "trailer-1",
		TrailerTitle: "6x12 Enclosed Cargo Trailer",
		Blocked: []domainschedule.BlockedPeriod{
			{ID: "p1", TrailerID: "trailer-1", Start: civil.MustParse("2025-06-10"), End: civil.MustParse("2025-06-12"), Reason: "maintenance"},
		},
		Rentals: []domainrental.Rental{
			{ID: "r1", TrailerID: "trailer-1", Start: civil.MustParse("2025-06-20"), End: civil.MustParse("2025-06-21"), Status: domainrental.StatusConfirmed},
			{ID: "r2", TrailerID: "trailer-1", Start: civil.MustParse("2025-06-25"), End: civil.MustParse("2025-06-26"), Status: domainrental.StatusCancelled},
		},
		GeneratedAt: time.Date(2025, time.June, 1, 8, 30, 0, 0, time.UTC),
	}))

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"PRODID:-//hitchup//calendar//EN\r\n",
		"UID:blocked-p1@hitchup\r\n",
		"DTSTART;VALUE=DATE:20250610\r\n",
		// DTEND is exclusive, one day past the inclusive range end.
		"DTEND;VALUE=DATE:20250613\r\n",
		"SUMMARY:Blocked: maintenance\r\n",
		"UID:rental-r1@hitchup\r\n",
		"DTSTAMP:20250601T083000Z\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("feed missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "rental-r2") {
		t.Fatalf("cancelled rental must not appear in the feed:\n%s", got)
	}
}

func TestRenderEscapesText(t *testing.T) {
	t.Parallel()

	got := string(Render(Calendar{
		TrailerTitle: "Flatbed, 16ft; heavy",
		GeneratedAt:  time.Now(),
	}))
	if !strings.Contains(got, `X-WR-CALNAME:Flatbed\, 16ft\; heavy`) {
		t.Fatalf("calendar name not escaped:\n%s", got)
	}
}

func TestRenderFoldsLongLines(t *testing.T) {
	t.Parallel()

	got := Render(Calendar{
		TrailerTitle: strings.Repeat("x", 200),
		GeneratedAt:  time.Now(),
	})
	for _, line := range strings.Split(string(got), "\r\n") {
		if len(line) > 75 {
			t.Fatalf("line exceeds 75 octets: %q", line)
		}
	}
}

func TestRenderFoldsOnRuneBoundaries(t *testing.T) {
	t.Parallel()

	// Two-byte runes straddle the 75-octet mark; every fold must land
	// between runes or the feed stops being valid UTF-8.
	got := Render(Calendar{
		TrailerTitle: strings.Repeat("ö", 120),
		GeneratedAt:  time.Now(),
	})
	for _, line := range strings.Split(string(got), "\r\n") {
		if len(line) > 75 {
			t.Fatalf("line exceeds 75 octets: %q", line)
		}
		if !utf8.ValidString(line) {
			t.Fatalf("fold split a rune: %q", line)
		}
	}
}
