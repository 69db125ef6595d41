package render

import (
	"strconv"
	"time"

	"github.com/cassius-cv/cassius/internal/record"
)

// NoDate is the display sentinel for records whose date cannot be
// parsed. It is produced once from the raw field and never re-parsed.
const NoDate = "n.d."

// DisplayYear resolves a record's display year from the first four
// characters of its date field, or NoDate on any parse failure.
func DisplayYear(rec record.Record) string {
	if y, ok := year(rec); ok {
		return strconv.Itoa(y)
	}
	return NoDate
}

// DateParts attempts a full YYYY-MM-DD parse and returns a
// [year, month, day] triple, falling back to [year], or nil when even
// the year is unparseable.
func DateParts(rec record.Record) []int {
	raw := rec.Str(record.FieldDate)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return []int{t.Year(), int(t.Month()), t.Day()}
	}
	if y, ok := year(rec); ok {
		return []int{y}
	}
	return nil
}

func year(rec record.Record) (int, bool) {
	raw := rec.Str(record.FieldDate)
	if len(raw) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(raw[:4])
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}
