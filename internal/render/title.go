package render

import (
	"regexp"
	"strings"
	"sync"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
)

// quoteReplacer maps double quotation marks (ASCII and curly) to their
// single equivalents.
var quoteReplacer = strings.NewReplacer(
	`"`, "'",
	"“", "‘",
	"”", "’",
)

// TitleNormalizer applies quote replacement and italics markup to
// record titles. The compiled italics patterns are built once, on first
// use, from the configured phrase list and reused for every record in
// the process.
type TitleNormalizer struct {
	phrases           []string
	outerQuotesSingle bool

	once     sync.Once
	patterns []*regexp.Regexp
}

// NewTitleNormalizer creates a normalizer for the configured
// italicization phrases. Phrase order is preserved: earlier entries
// apply before later ones, which is significant when phrases overlap.
func NewTitleNormalizer(phrases []string, outerQuotesSingle bool) *TitleNormalizer {
	return &TitleNormalizer{phrases: phrases, outerQuotesSingle: outerQuotesSingle}
}

// NormalizeQuotes replaces double quotation marks in the title with
// single equivalents. Skipped when the configuration already uses
// single outer quotes, since possessive apostrophes would be ambiguous.
func (n *TitleNormalizer) NormalizeQuotes(rec record.Record) {
	if n.outerQuotesSingle {
		return
	}
	rec.SetStr(record.FieldTitle, quoteReplacer.Replace(rec.Title()))
}

// Italicize wraps configured phrases in the title with <i> markup,
// using whole-word boundary matching. No-op for categories that do not
// enable italics.
func (n *TitleNormalizer) Italicize(rec record.Record, cat config.Category) {
	if !cat.ItalicizeTitles || len(n.phrases) == 0 {
		return
	}

	n.once.Do(func() {
		n.patterns = make([]*regexp.Regexp, 0, len(n.phrases))
		for _, phrase := range n.phrases {
			n.patterns = append(n.patterns,
				regexp.MustCompile(`(\W|^)(`+regexp.QuoteMeta(phrase)+`)(\W|$)`))
		}
	})

	title := rec.Title()
	for _, pattern := range n.patterns {
		title = pattern.ReplaceAllString(title, "${1}<i>${2}</i>${3}")
	}
	rec.SetStr(record.FieldTitle, title)
}
