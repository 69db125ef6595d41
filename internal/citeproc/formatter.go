package citeproc

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
	"github.com/cassius-cv/cassius/internal/render"
)

// Formatter renders citation sections by delegating line formatting to
// the external service while keeping section assembly, venue
// exclusion, year grouping, and OA badges local.
type Formatter struct {
	cfg    *config.Config
	client *Client
	titles *render.TitleNormalizer
	log    *zap.Logger
}

// NewFormatter creates a formatter using the given client.
func NewFormatter(cfg *config.Config, client *Client, log *zap.Logger) *Formatter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Formatter{
		cfg:    cfg,
		client: client,
		titles: render.NewTitleNormalizer(cfg.Italicize, cfg.OuterQuotesSingle),
		log:    log,
	}
}

// Section renders one category through the formatting service. Items
// are posted concurrently, one request per record, and reassembled in
// record order; any request failure fails the section.
func (f *Formatter) Section(ctx context.Context, name string, records []record.Record) (string, error) {
	cat, ok := f.cfg.Categories[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", render.ErrUnknownCategory, name)
	}

	count := len(records)
	var kept []record.Record
	for _, rec := range records {
		if render.VenueExcluded(rec, cat) {
			count--
			continue
		}
		kept = append(kept, rec)
	}

	years := make([]string, len(kept))
	items := make([]*Item, len(kept))
	for i, rec := range kept {
		years[i] = render.DisplayYear(rec)
		f.titles.Italicize(rec, cat)
		items[i] = BuildItem(rec, cat, i, years[i])
	}

	fragments, err := f.format(ctx, items, cat.CiteprocStyle)
	if err != nil {
		return "", fmt.Errorf("formatting %s: %w", name, err)
	}

	currentYear := ""
	var body strings.Builder
	for i, rec := range kept {
		if fragments[i] == "" {
			continue
		}

		template := cat.CiteprocItemTemplate
		if years[i] != currentYear {
			template = cat.CiteprocItemTemplateNewDate
			currentYear = years[i]
		}

		oaStatus := render.BuildOABadge(rec, cat, f.cfg.Email)
		body.WriteString(substituteFragment(template, fragments[i], rec, years[i], oaStatus))
	}

	f.log.Debug("formatted section",
		zap.String("category", name),
		zap.Int("items", count))

	return render.AssembleSection(cat, name, body.String(), count), nil
}

// format fans requests out across the server instances and collects
// the fragments back in item order.
func (f *Formatter) format(ctx context.Context, items []*Item, style string) ([]string, error) {
	fragments := make([]string, len(items))

	g, ctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			fragment, err := f.client.Format(ctx, item, style, f.client.Port(i))
			if err != nil {
				return err
			}
			fragments[i] = fragment
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return fragments, nil
}

// substituteFragment rewrites the service's div wrapper into a link to
// the record's page, then fills the line template.
func substituteFragment(template, fragment string, rec record.Record, year, oaStatus string) string {
	fragment = strings.ReplaceAll(fragment, "<div",
		fmt.Sprintf("<a href=%q", rec.Str(record.FieldURI)))
	fragment = strings.ReplaceAll(fragment, "</div", "</a")

	line := strings.ReplaceAll(template, "[[citeproc]]", fragment)
	line = strings.ReplaceAll(line, "[[year]]", year)
	return strings.ReplaceAll(line, "[[oa_status]]", oaStatus)
}

// Bound adapts a Formatter to the section renderer interface consumed
// by the template expander, carrying the build's context.
type Bound struct {
	ctx context.Context
	f   *Formatter
}

// WithContext returns a section renderer view bound to ctx.
func (f *Formatter) WithContext(ctx context.Context) *Bound {
	return &Bound{ctx: ctx, f: f}
}

// RenderSection renders the named category under the bound context.
func (b *Bound) RenderSection(name string, records []record.Record) (string, error) {
	return b.f.Section(b.ctx, name, records)
}
