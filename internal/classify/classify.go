// Package classify assigns repository records to configured categories.
package classify

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
)

// ReviewMarker is the title prefix that identifies a book review.
const ReviewMarker = "Review of"

// refereed field values used by the repository.
const (
	refereedTrue  = "TRUE"
	refereedFalse = "FALSE"
)

// Classifier matches records against category inclusion rules.
type Classifier struct {
	categories map[string]config.Category
	log        *zap.Logger
}

// New creates a classifier over the given category table.
func New(categories map[string]config.Category, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{categories: categories, log: log}
}

// Classify returns the sorted set of category names the record
// qualifies for. A record whose database type maps to no category is
// skipped with a debug log; it is not an error.
func (c *Classifier) Classify(rec record.Record) []string {
	potential := c.potentialCategories(rec)
	if len(potential) == 0 {
		c.log.Debug("no category for record type",
			zap.String("type", rec.Type()),
			zap.String("title", rec.Title()))
		return nil
	}

	var names []string
	for _, name := range potential {
		cat := c.categories[name]
		if !matchesPeerReview(cat.PeerReviewed, rec) {
			continue
		}
		if !matchesEditorial(cat.Editorial, rec) {
			continue
		}
		if !matchesBookReview(cat.BookReview, rec) {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// potentialCategories reverse-looks-up all categories whose configured
// database type equals the record's type.
func (c *Classifier) potentialCategories(rec record.Record) []string {
	var names []string
	for name, cat := range c.categories {
		if cat.DBType == rec.Type() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// matchesPeerReview applies a category's peer-review rule. A strict
// rule requires the refereed field to be present: records lacking it
// are excluded from both true- and false-ruled categories. This
// mirrors the repository's historical behavior for partial exports.
func matchesPeerReview(rule config.Rule, rec record.Record) bool {
	switch rule {
	case config.RuleAny:
		return true
	case config.RuleOnly:
		v, ok := rec.StrOK(record.FieldRefereed)
		return ok && v == refereedTrue
	case config.RuleNot:
		v, ok := rec.StrOK(record.FieldRefereed)
		return ok && v == refereedFalse
	default:
		return false
	}
}

// matchesEditorial applies a category's editorial rule. The
// discriminator is the presence of the editors field.
func matchesEditorial(rule config.Rule, rec record.Record) bool {
	switch rule {
	case config.RuleAny:
		return true
	case config.RuleOnly:
		return rec.Has(record.FieldEditors)
	case config.RuleNot:
		return !rec.Has(record.FieldEditors)
	default:
		return false
	}
}

// matchesBookReview applies a category's book-review rule, using the
// review-title prefix heuristic.
func matchesBookReview(rule config.Rule, rec record.Record) bool {
	isReview := hasReviewTitle(rec)
	switch rule {
	case config.RuleAny:
		return true
	case config.RuleOnly:
		return isReview
	case config.RuleNot:
		return !isReview
	default:
		return false
	}
}

func hasReviewTitle(rec record.Record) bool {
	title := rec.Title()
	return len(title) >= len(ReviewMarker) && title[:len(ReviewMarker)] == ReviewMarker
}
