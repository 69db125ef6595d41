package render

import (
	"reflect"
	"testing"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
)

func TestDisplayYear(t *testing.T) {
	tests := []struct {
		name string
		date any
		want string
	}{
		{"full date", "2020-05-01", "2020"},
		{"year only", "2020", "2020"},
		{"malformed", "forthcoming", NoDate},
		{"too short", "20", NoDate},
		{"absent", nil, NoDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record.Record{}
			if tt.date != nil {
				rec["date"] = tt.date
			}
			if got := DisplayYear(rec); got != tt.want {
				t.Errorf("DisplayYear() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDateParts(t *testing.T) {
	tests := []struct {
		name string
		date string
		want []int
	}{
		{"precise", "2019-03-12", []int{2019, 3, 12}},
		{"year fallback", "2019-03", []int{2019}},
		{"year only", "2019", []int{2019}},
		{"unparseable", "n.d.", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateParts(record.Record{"date": tt.date})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DateParts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildVolume(t *testing.T) {
	cat := config.Category{VolumeTemplate: " [[volume]][[number]]"}

	tests := []struct {
		name     string
		rec      record.Record
		brackets bool
		want     string
	}{
		{
			name:     "volume and bracketed number",
			rec:      record.Record{"volume": "12", "number": "3"},
			brackets: true,
			want:     " 12(3)",
		},
		{
			name: "number without brackets",
			rec:  record.Record{"volume": "12", "number": "3"},
			want: " 123",
		},
		{
			name:     "absent fields resolve empty",
			rec:      record.Record{},
			brackets: true,
			want:     " ",
		},
		{
			name:     "numeric json value",
			rec:      record.Record{"volume": float64(7)},
			brackets: true,
			want:     " 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildVolume(tt.rec, cat, tt.brackets); got != tt.want {
				t.Errorf("BuildVolume() = %q, want %q", got, tt.want)
			}
		})
	}
}

func oaCategory() config.Category {
	return config.Category{
		OAAvailable:   `<a href="[[oa_uri]]" class="[[oa_color]]">Download[[doc]]</a>`,
		OAUnavailable: `<a href="mailto:[[email]]?subject=[[title]]">Request</a>`,
	}
}

func TestBuildOABadge(t *testing.T) {
	tests := []struct {
		name string
		rec  record.Record
		want string
	}{
		{
			name: "gold with files entry",
			rec: record.Record{
				"oa_status": "gold",
				"files":     []any{map[string]any{"url": "https://r/f.pdf"}},
			},
			want: `<a href="https://r/f.pdf" class="goldenrod">Download</a>`,
		},
		{
			name: "green with single document",
			rec: record.Record{
				"oa_status": "green",
				"documents": []any{map[string]any{"uri": "https://r/1"}},
			},
			want: `<a href="https://r/1" class="green">Download</a>`,
		},
		{
			name: "green with multiple documents",
			rec: record.Record{
				"oa_status": "green",
				"documents": []any{
					map[string]any{"uri": "https://r/1", "formatdesc": "PDF"},
					map[string]any{"uri": "https://r/2"},
				},
			},
			want: `<a href="https://r/1" class="green">Download PDF</a>` +
				`<a href="https://r/2" class="green">Download</a>`,
		},
		{
			name: "no oa_status falls back to contact prompt",
			rec:  record.Record{"title": "A Study"},
			want: `<a href="mailto:me@example.org?subject=A Study">Request</a>`,
		},
		{
			name: "gold without any document falls back",
			rec:  record.Record{"oa_status": "gold", "title": "A Study"},
			want: `<a href="mailto:me@example.org?subject=A Study">Request</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildOABadge(tt.rec, oaCategory(), "me@example.org")
			if got != tt.want {
				t.Errorf("BuildOABadge() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildOABadgeDisabledCategory(t *testing.T) {
	rec := record.Record{"oa_status": "gold"}
	if got := BuildOABadge(rec, config.Category{}, "me@example.org"); got != "" {
		t.Errorf("BuildOABadge() = %q, want empty for category without badge template", got)
	}
}

func TestLinkOfficialURL(t *testing.T) {
	tests := []struct {
		name    string
		rec     record.Record
		enabled bool
		wantURI string
	}{
		{
			name:    "gold with official url",
			rec:     record.Record{"oa_status": "gold", "official_url": "https://doi.org/x", "uri": "https://repo/1"},
			enabled: true,
			wantURI: "https://doi.org/x",
		},
		{
			name:    "disabled category",
			rec:     record.Record{"oa_status": "gold", "official_url": "https://doi.org/x", "uri": "https://repo/1"},
			wantURI: "https://repo/1",
		},
		{
			name:    "green untouched",
			rec:     record.Record{"oa_status": "green", "official_url": "https://doi.org/x", "uri": "https://repo/1"},
			enabled: true,
			wantURI: "https://repo/1",
		},
		{
			name:    "gold without official url",
			rec:     record.Record{"oa_status": "gold", "uri": "https://repo/1"},
			enabled: true,
			wantURI: "https://repo/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			LinkOfficialURL(tt.rec, config.Category{GoldOADirectLink: tt.enabled})
			if got := tt.rec.Str("uri"); got != tt.wantURI {
				t.Errorf("uri = %q, want %q", got, tt.wantURI)
			}
		})
	}
}

func TestNormalizeQuotes(t *testing.T) {
	n := NewTitleNormalizer(nil, false)
	rec := record.Record{"title": "The \"Great\" “Debate”"}
	n.NormalizeQuotes(rec)
	if got := rec.Title(); got != "The 'Great' ‘Debate’" {
		t.Errorf("title = %q", got)
	}

	single := NewTitleNormalizer(nil, true)
	rec = record.Record{"title": `The "Great" Debate`}
	single.NormalizeQuotes(rec)
	if got := rec.Title(); got != `The "Great" Debate` {
		t.Errorf("outer_quotes_single should leave title alone, got %q", got)
	}
}

func TestItalicize(t *testing.T) {
	cat := config.Category{ItalicizeTitles: true}

	t.Run("whole word boundaries", func(t *testing.T) {
		n := NewTitleNormalizer([]string{"Ulysses"}, false)
		rec := record.Record{"title": "Reading Ulysses Today"}
		n.Italicize(rec, cat)
		if got := rec.Title(); got != "Reading <i>Ulysses</i> Today" {
			t.Errorf("title = %q", got)
		}

		rec = record.Record{"title": "The Ulyssesean Mode"}
		n.Italicize(rec, cat)
		if got := rec.Title(); got != "The Ulyssesean Mode" {
			t.Errorf("partial word match applied: %q", got)
		}
	})

	t.Run("configured order is authoritative", func(t *testing.T) {
		// The shorter phrase is listed first, so it fires inside the
		// longer one and the longer phrase no longer matches.
		n := NewTitleNormalizer([]string{"Dubliners", "Dubliners Revisited"}, false)
		rec := record.Record{"title": "On Dubliners Revisited"}
		n.Italicize(rec, cat)
		if got := rec.Title(); got != "On <i>Dubliners</i> Revisited" {
			t.Errorf("title = %q", got)
		}
	})

	t.Run("disabled category", func(t *testing.T) {
		n := NewTitleNormalizer([]string{"Ulysses"}, false)
		rec := record.Record{"title": "Reading Ulysses Today"}
		n.Italicize(rec, config.Category{})
		if got := rec.Title(); got != "Reading Ulysses Today" {
			t.Errorf("title = %q", got)
		}
	})
}
