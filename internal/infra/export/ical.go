package export

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
)

const (
	prodID     = "-//hitchup//calendar//EN"
	dateLayout = "20060102"
)

// Calendar holds everything an iCal feed of one trailer needs.
type Calendar struct {
	TrailerID    string
	TrailerTitle string
	Blocked      []domainschedule.BlockedPeriod
	Rentals      []domainrental.Rental
	GeneratedAt  time.Time
}

// Render produces an RFC 5545 VCALENDAR with one all-day VEVENT per blocked
// period and per occupying rental. DTEND is exclusive in iCal, hence the +1.
func Render(cal Calendar) []byte {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+prodID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "X-WR-CALNAME:"+escapeText(cal.TrailerTitle))

	stamp := cal.GeneratedAt.UTC().Format("20060102T150405Z")
	for _, p := range cal.Blocked {
		writeEvent(&b, eventParams{
			uid:     fmt.Sprintf("blocked-%s@hitchup", p.ID),
			stamp:   stamp,
			start:   p.Start,
			end:     p.End,
			summary: blockedSummary(p),
		})
	}
	for _, r := range cal.Rentals {
		if !r.Status.Occupying() {
			continue
		}
		writeEvent(&b, eventParams{
			uid:     fmt.Sprintf("rental-%s@hitchup", r.ID),
			stamp:   stamp,
			start:   r.Start,
			end:     r.End,
			summary: "Rented",
		})
	}

	writeLine(&b, "END:VCALENDAR")
	return []byte(b.String())
}

type eventParams struct {
	uid     string
	stamp   string
	start   civil.Date
	end     civil.Date
	summary string
}

func writeEvent(b *strings.Builder, ev eventParams) {
	writeLine(b, "BEGIN:VEVENT")
	writeLine(b, "UID:"+ev.uid)
	writeLine(b, "DTSTAMP:"+ev.stamp)
	writeLine(b, "DTSTART;VALUE=DATE:"+ev.start.Time().Format(dateLayout))
	writeLine(b, "DTEND;VALUE=DATE:"+ev.end.AddDays(1).Time().Format(dateLayout))
	writeLine(b, "SUMMARY:"+escapeText(ev.summary))
	writeLine(b, "END:VEVENT")
}

func blockedSummary(p domainschedule.BlockedPeriod) string {
	if p.Reason == "" {
		return "Blocked"
	}
	return "Blocked: " + p.Reason
}

// writeLine folds content lines at 75 octets per RFC 5545 §3.1, backing up
// to a rune boundary so multi-byte text never splits mid-sequence.
func writeLine(b *strings.Builder, line string) {
	const limit = 75
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)
	return r.Replace(s)
}
