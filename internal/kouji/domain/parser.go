package domain

import (
	"regexp"
	"strings"
	"time"
)

// AssumedDurationMonths is the project length assumed when no end date has
// been recorded for a folder.
const AssumedDurationMonths = 3

const projectIDLayout = "2006-0102"

// projectIDPattern is checked before time parsing so that forms like
// "2025-618" or "２０２５-0618" never reach the layout parser.
var projectIDPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// ParseRecord classifies a directory entry whose name follows the
// "YYYY-MMDD <company> <location...>" convention. The second result is
// false for files, for names with fewer than three whitespace-separated
// tokens and for date tokens that are not real calendar dates.
func ParseRecord(entry RawEntry, loc *time.Location) (Record, bool) {
	if !entry.IsDirectory {
		return Record{}, false
	}

	tokens := strings.Fields(entry.Name)
	if len(tokens) < 3 {
		return Record{}, false
	}

	start, ok := parseProjectDate(tokens[0], loc)
	if !ok {
		return Record{}, false
	}

	company := tokens[1]
	location := strings.Join(tokens[2:], " ")

	return Record{
		RawEntry:     entry,
		ProjectID:    tokens[0],
		ProjectName:  entry.Name,
		CompanyName:  company,
		LocationName: location,
		StartDate:    start,
		EndDate:      AddMonthsClamped(start, AssumedDurationMonths),
		Description:  company + "の" + location + "における工事プロジェクト",
		Tags:         []string{"工事", company, location, tokens[0][:4]},
	}, true
}

// Parse classifies entry and evaluates its status at now. Dates are anchored
// in now's location.
func Parse(entry RawEntry, now time.Time) (Project, bool) {
	rec, ok := ParseRecord(entry, now.Location())
	if !ok {
		return Project{}, false
	}
	return rec.At(now), true
}

func parseProjectDate(token string, loc *time.Location) (Date, bool) {
	if !projectIDPattern.MatchString(token) {
		return Date{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(projectIDLayout, token, loc)
	if err != nil {
		return Date{}, false
	}
	return DateOf(t), true
}
