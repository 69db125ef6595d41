package render

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
)

// fieldTokenRe matches [[field]] tokens in line templates, non-greedy.
var fieldTokenRe = regexp.MustCompile(`\[\[(.+?)\]\]`)

// ErrUnresolvedField indicates a line template referenced a field the
// record does not carry.
var ErrUnresolvedField = errors.New("unresolved field token")

// ErrUnknownCategory indicates a section was requested for a category
// that is not configured.
var ErrUnknownCategory = errors.New("unknown category")

// Renderer builds per-category citation sections using the local field
// builders.
type Renderer struct {
	cfg    *config.Config
	titles *TitleNormalizer
	log    *zap.Logger
}

// NewRenderer creates a renderer over the given configuration.
func NewRenderer(cfg *config.Config, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		cfg:    cfg,
		titles: NewTitleNormalizer(cfg.Italicize, cfg.OuterQuotesSingle),
		log:    log,
	}
}

// RenderSection renders one category's records into its section block:
// heading with the surviving item count, one line per record with
// year-grouping template selection, wrapped in the section container.
// Returns "" when no records survive venue exclusion.
func (r *Renderer) RenderSection(name string, records []record.Record) (string, error) {
	cat, ok := r.cfg.Categories[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCategory, name)
	}

	currentYear := ""
	count := len(records)
	var body strings.Builder

	for _, rec := range records {
		if VenueExcluded(rec, cat) {
			count--
			continue
		}

		year := DisplayYear(rec)
		creators := BuildCreators(rec, cat)
		editors := BuildEditors(rec, creators, cat)
		volume := BuildVolume(rec, cat, r.cfg.NumberInBrackets)
		oaStatus := BuildOABadge(rec, cat, r.cfg.Email)

		// The sanctioned in-place normalizations, after the badge has
		// captured the raw title and before any field is substituted.
		r.titles.NormalizeQuotes(rec)
		LinkOfficialURL(rec, cat)
		r.titles.Italicize(rec, cat)

		template := cat.ItemTemplate
		if year != currentYear {
			template = cat.ItemTemplateNewDate
			currentYear = year
		}

		line, err := substituteLine(template, year, creators, editors, volume, oaStatus, rec)
		if err != nil {
			return "", fmt.Errorf("rendering %s: %w", name, err)
		}
		body.WriteString(line)
	}

	r.log.Debug("rendered section",
		zap.String("category", name),
		zap.Int("items", count))

	return AssembleSection(cat, name, body.String(), count), nil
}

// AssembleSection wraps rendered lines in the category's heading and
// container templates. Zero surviving items yield an empty string, not
// an empty wrapper.
func AssembleSection(cat config.Category, name, body string, count int) string {
	if count <= 0 {
		return ""
	}

	header := strings.ReplaceAll(cat.HeaderTemplate, "[[heading]]", cat.Heading)
	header = strings.ReplaceAll(header, "[[count]]", strconv.Itoa(count))

	section := strings.ReplaceAll(cat.SectionTemplate, "[[name]]", name)
	return strings.ReplaceAll(section, "[[content]]", header+body)
}

// VenueExcluded reports whether the record's publication is on the
// category's excluded-venue list.
func VenueExcluded(rec record.Record, cat config.Category) bool {
	pub, ok := rec.StrOK(record.FieldPublication)
	if !ok {
		return false
	}
	for _, venue := range cat.ExcludeVenues {
		if pub == venue {
			return true
		}
	}
	return false
}

// substituteLine fills an item template: the special tokens first, then
// any remaining [[field]] tokens directly from the record. A reference
// to a field the record lacks is an error.
func substituteLine(template, year, creators, editors, volume, oaStatus string, rec record.Record) (string, error) {
	line := strings.ReplaceAll(template, "[[year]]", year)
	line = strings.ReplaceAll(line, "[[creators]]", creators)
	line = strings.ReplaceAll(line, "[[editors]]", editors)
	line = strings.ReplaceAll(line, "[[oa_status]]", oaStatus)
	line = strings.ReplaceAll(line, "[[volume]]", volume)

	trailing := ""
	if creators != "" {
		trailing = ", "
	}
	line = strings.ReplaceAll(line, "[[trailingcommacreators]]", trailing)

	var missing string
	line = fieldTokenRe.ReplaceAllStringFunc(line, func(token string) string {
		field := token[2 : len(token)-2]
		value, ok := rec.StrOK(field)
		if !ok {
			if missing == "" {
				missing = field
			}
			return token
		}
		return value
	})
	if missing != "" {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedField, missing)
	}

	return line, nil
}
