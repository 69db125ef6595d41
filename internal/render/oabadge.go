package render

import (
	"strings"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
)

// OA status values recognised by the badge builder.
const (
	OAGold  = "gold"
	OAGreen = "green"
)

// goldColor is the badge color token for gold open access; green uses
// the status string itself.
const goldColor = "goldenrod"

// BuildOABadge renders a record's open-access badge. Gold and green
// records get a download badge per deposited document, populated from
// the files list first, else the documents list. Anything else gets the
// "not available" badge with a contact prompt. Categories without an
// oa_available template render no badge at all.
func BuildOABadge(rec record.Record, cat config.Category, email string) string {
	if cat.OAAvailable == "" {
		return ""
	}

	status := rec.Str(record.FieldOAStatus)
	if status != OAGold && status != OAGreen {
		return unavailableBadge(rec, cat, email)
	}

	color := status
	if status == OAGold {
		color = goldColor
	}

	if files := rec.Files(); len(files) > 0 {
		return badgeSegment(cat.OAAvailable, files[0].URL, color, "")
	}

	docs := rec.Documents()
	if len(docs) == 0 {
		return unavailableBadge(rec, cat, email)
	}
	if len(docs) == 1 {
		return badgeSegment(cat.OAAvailable, docs[0].URI, color, "")
	}

	// One segment per deposited document, annotated with its format
	// description when present.
	var out strings.Builder
	for _, doc := range docs {
		desc := ""
		if doc.FormatDesc != "" {
			desc = " " + doc.FormatDesc
		}
		out.WriteString(badgeSegment(cat.OAAvailable, doc.URI, color, desc))
	}
	return out.String()
}

func badgeSegment(template, uri, color, doc string) string {
	out := strings.ReplaceAll(template, "[[oa_uri]]", uri)
	out = strings.ReplaceAll(out, "[[oa_color]]", color)
	return strings.ReplaceAll(out, "[[doc]]", doc)
}

func unavailableBadge(rec record.Record, cat config.Category, email string) string {
	out := strings.ReplaceAll(cat.OAUnavailable, "[[email]]", email)
	return strings.ReplaceAll(out, "[[title]]", rec.Title())
}

// LinkOfficialURL overwrites the record's display URI with its official
// URL for gold open-access records, when the category enables direct
// linking. Must run before any field is read for line rendering.
func LinkOfficialURL(rec record.Record, cat config.Category) {
	if !cat.GoldOADirectLink {
		return
	}
	if rec.Str(record.FieldOAStatus) != OAGold {
		return
	}
	if official, ok := rec.StrOK(record.FieldOfficialURL); ok {
		rec.SetStr(record.FieldURI, official)
	}
}
