package render

import (
	"strings"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
)

// BuildVolume renders the category's volume/issue template. Absent
// fields resolve to empty strings; the issue number is parenthesised
// when numberInBrackets is set.
func BuildVolume(rec record.Record, cat config.Category, numberInBrackets bool) string {
	out := strings.ReplaceAll(cat.VolumeTemplate, "[[volume]]", rec.Str(record.FieldVolume))

	number := rec.Str(record.FieldNumber)
	if number != "" && numberInBrackets {
		number = "(" + number + ")"
	}
	return strings.ReplaceAll(out, "[[number]]", number)
}
