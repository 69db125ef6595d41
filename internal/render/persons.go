// Package render builds citation lines from repository records.
package render

import (
	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
)

// formatPerson renders one person in the configured layout.
func formatPerson(p record.Person, surnameFirst bool) string {
	if surnameFirst {
		return p.Name.Family + ", " + p.Name.Given
	}
	return p.Name.Given + " " + p.Name.Family
}

// joinPersons joins a person list using the configured delimiters: the
// plain delimiter between interior pairs and a distinct terminal
// delimiter before the last entry (the two-person variant when exactly
// two people are listed). The first position uses the primary layout,
// all others the secondary layout.
func joinPersons(persons []record.Person, cfg config.PersonList) string {
	if len(persons) == 0 {
		return ""
	}

	out := formatPerson(persons[0], cfg.PrimarySurnameFirst)
	for i := 1; i < len(persons); i++ {
		switch {
		case i == len(persons)-1 && len(persons) == 2:
			out += cfg.TerminalDelimiterTwo
		case i == len(persons)-1:
			out += cfg.TerminalDelimiter
		default:
			out += cfg.Delimiter
		}
		out += formatPerson(persons[i], cfg.OtherSurnameFirst)
	}
	return out
}

// BuildCreators renders the record's creator list, or "" when the
// record has no creators field.
func BuildCreators(rec record.Record, cat config.Category) string {
	return joinPersons(rec.Creators(), cat.Creators)
}

// BuildEditors renders the record's editor list. The configured prefix
// stands in for the leading delimiter: it opens the editor string
// whether or not the creators string is empty, so editor lists read as
// a continuation of the citation (e.g. "; ed. by "). The creators
// argument keeps the declared chaining explicit even though both cases
// currently resolve to the prefix.
func BuildEditors(rec record.Record, creators string, cat config.Category) string {
	editors := rec.Editors()
	if len(editors) == 0 {
		return ""
	}
	return cat.Editors.Prefix + joinPersons(editors, cat.Editors)
}
