package render

import (
	"testing"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
)

func person(family, given string) map[string]any {
	return map[string]any{"name": map[string]any{"family": family, "given": given}}
}

func testCategory() config.Category {
	return config.Category{
		Creators: config.PersonList{
			Delimiter:            ", ",
			TerminalDelimiter:    ", and ",
			TerminalDelimiterTwo: " and ",
			PrimarySurnameFirst:  true,
		},
		Editors: config.PersonList{
			Prefix:               "; ed. by ",
			Delimiter:            ", ",
			TerminalDelimiter:    ", and ",
			TerminalDelimiterTwo: " and ",
		},
	}
}

func TestBuildCreators(t *testing.T) {
	cat := testCategory()

	tests := []struct {
		name     string
		creators []any
		want     string
	}{
		{
			name: "no creators field",
			want: "",
		},
		{
			// Single person: no delimiter at all, primary layout.
			name:     "one creator",
			creators: []any{person("Smith", "A")},
			want:     "Smith, A",
		},
		{
			// Exactly two: only the two-person terminal delimiter.
			name:     "two creators",
			creators: []any{person("Smith", "A"), person("Jones", "B")},
			want:     "Smith, A and B Jones",
		},
		{
			// N>=3: N-2 interior delimiters plus one terminal delimiter.
			name: "four creators",
			creators: []any{
				person("Smith", "A"), person("Jones", "B"),
				person("Brown", "C"), person("Green", "D"),
			},
			want: "Smith, A, B Jones, C Brown, and D Green",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record.Record{}
			if tt.creators != nil {
				rec["creators"] = tt.creators
			}
			if got := BuildCreators(rec, cat); got != tt.want {
				t.Errorf("BuildCreators() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildCreatorsLayoutSplit(t *testing.T) {
	cat := testCategory()
	cat.Creators.PrimarySurnameFirst = false
	cat.Creators.OtherSurnameFirst = true

	rec := record.Record{"creators": []any{person("Smith", "A"), person("Jones", "B")}}
	if got := BuildCreators(rec, cat); got != "A Smith and Jones, B" {
		t.Errorf("BuildCreators() = %q", got)
	}
}

func TestBuildEditors(t *testing.T) {
	cat := testCategory()

	tests := []struct {
		name     string
		editors  []any
		creators string
		want     string
	}{
		{
			name: "no editors field",
			want: "",
		},
		{
			name:    "single editor gets prefix, no delimiter",
			editors: []any{person("Jones", "B")},
			want:    "; ed. by B Jones",
		},
		{
			name:     "prefix used even when creators empty",
			editors:  []any{person("Jones", "B")},
			creators: "",
			want:     "; ed. by B Jones",
		},
		{
			name:    "two editors",
			editors: []any{person("Jones", "B"), person("Brown", "C")},
			want:    "; ed. by B Jones and C Brown",
		},
		{
			name:    "three editors",
			editors: []any{person("Jones", "B"), person("Brown", "C"), person("Green", "D")},
			want:    "; ed. by B Jones, C Brown, and D Green",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record.Record{}
			if tt.editors != nil {
				rec["editors"] = tt.editors
			}
			if got := BuildEditors(rec, tt.creators, cat); got != tt.want {
				t.Errorf("BuildEditors() = %q, want %q", got, tt.want)
			}
		})
	}
}
