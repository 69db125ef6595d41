// Package config loads and validates the cassius.yml configuration.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Rule is a three-valued classification predicate setting: a category
// may accept any record, only records where the discriminator holds, or
// only records where it does not.
type Rule string

const (
	RuleAny  Rule = "any"
	RuleOnly Rule = "true"
	RuleNot  Rule = "false"
)

// UnmarshalYAML accepts both YAML booleans and the string "any".
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	var b bool
	if err := value.Decode(&b); err == nil {
		if b {
			*r = RuleOnly
		} else {
			*r = RuleNot
		}
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid rule value: %w", err)
	}
	switch Rule(s) {
	case RuleAny, RuleOnly, RuleNot:
		*r = Rule(s)
		return nil
	default:
		return fmt.Errorf("invalid rule value %q (expected any, true, or false)", s)
	}
}

// Config is the top-level configuration.
type Config struct {
	Repository RepositoryConfig `yaml:"repository"`

	// Email is the contact address used in "not available" OA badges.
	Email string `yaml:"email"`

	// NumberInBrackets wraps issue numbers in parentheses in volume
	// strings when set.
	NumberInBrackets bool `yaml:"number_in_brackets"`

	// OuterQuotesSingle disables double-to-single quote replacement in
	// titles (single outer quotes make possessive apostrophes ambiguous).
	OuterQuotesSingle bool `yaml:"outer_quotes_single"`

	Storage     StorageConfig `yaml:"storage"`
	SectionsDir string        `yaml:"sections_dir"`

	// DefaultCategories are fetched when none are named on the CLI.
	DefaultCategories []string `yaml:"default_categories"`

	// Italicize lists phrases wrapped in <i> tags inside titles. Order
	// is significant: entries apply in list order.
	Italicize []string `yaml:"italicize"`

	Categories map[string]Category `yaml:"categories"`
	Rulesets   map[string]Ruleset  `yaml:"rulesets"`
	Citeproc   CiteprocConfig      `yaml:"citeproc"`
}

// RepositoryConfig locates the EPrints export endpoint.
type RepositoryConfig struct {
	Endpoint string `yaml:"endpoint"` // host or full URL, scheme optional
	User     string `yaml:"user"`     // encoded exportview user segment
}

// StorageConfig holds on-disk cache locations.
type StorageConfig struct {
	JSON          string `yaml:"json"`           // raw export cache file
	CategoriesDir string `yaml:"categories_dir"` // per-category JSONL directory
	DB            string `yaml:"db"`             // SQLite record cache
}

// PersonList configures how a creator or editor list is joined.
type PersonList struct {
	// Prefix replaces the delimiter before the first entry when nothing
	// precedes it (used for editors, e.g. "; ed. by ").
	Prefix string `yaml:"prefix"`

	Delimiter            string `yaml:"delimiter"`
	TerminalDelimiter    string `yaml:"terminal_delimiter"`     // before last entry, 3+ people
	TerminalDelimiterTwo string `yaml:"terminal_delimiter_two"` // before last entry, exactly 2

	PrimarySurnameFirst bool `yaml:"primary_surname_first"`
	OtherSurnameFirst   bool `yaml:"other_surname_first"`
}

// Category is one named output bucket with its inclusion rules and
// formatting templates. Read-only at runtime.
type Category struct {
	// DBType is the underlying repository database type (book, article,
	// book_section, conference_item).
	DBType string `yaml:"db_type"`

	PeerReviewed Rule `yaml:"peer_reviewed"`
	Editorial    Rule `yaml:"editorial"`
	BookReview   Rule `yaml:"book_review"`

	Heading string `yaml:"heading"`

	// HeaderTemplate renders the section heading; [[heading]] and
	// [[count]] are substituted.
	HeaderTemplate string `yaml:"header_template"`

	// SectionTemplate wraps the heading plus item lines; [[name]] and
	// [[content]] are substituted.
	SectionTemplate string `yaml:"section_template"`

	// ItemTemplate renders one record; ItemTemplateNewDate is used when
	// the record's display year differs from the previous record's.
	ItemTemplate        string `yaml:"item_template"`
	ItemTemplateNewDate string `yaml:"item_template_new_date"`

	// Citeproc line templates used in external-formatter mode; only
	// [[citeproc]], [[year]], and [[oa_status]] are substituted.
	CiteprocItemTemplate        string `yaml:"citeproc_item_template"`
	CiteprocItemTemplateNewDate string `yaml:"citeproc_item_template_new_date"`

	// CiteprocType is the CSL type tag sent to the formatting service.
	CiteprocType string `yaml:"citeproc_type"`

	// CiteprocStyle is the CSL style identifier for this category.
	CiteprocStyle string `yaml:"citeproc_style"`

	Creators PersonList `yaml:"creators"`
	Editors  PersonList `yaml:"editors"`

	// VolumeTemplate renders volume/issue; [[volume]] and [[number]]
	// are substituted.
	VolumeTemplate string `yaml:"volume_template"`

	// OAAvailable renders the download badge; [[oa_uri]], [[oa_color]],
	// and [[doc]] are substituted. OAUnavailable renders the request
	// prompt; [[email]] and [[title]] are substituted. Badges are only
	// rendered when OAAvailable is configured.
	OAAvailable   string `yaml:"oa_available"`
	OAUnavailable string `yaml:"oa_unavailable"`

	GoldOADirectLink bool `yaml:"gold_oa_direct_link"`
	ItalicizeTitles  bool `yaml:"italicize_titles"`

	// ExcludeVenues drops records whose publication field matches.
	ExcludeVenues []string `yaml:"exclude_venues"`
}

// Ruleset is one output document build: a root template expanded and
// written to an output path, followed by post-processing commands.
type Ruleset struct {
	Template    string   `yaml:"template"`
	Output      string   `yaml:"output"`
	Postprocess []string `yaml:"postprocess"`
}

// CiteprocConfig locates the external citeproc-js-server instances.
type CiteprocConfig struct {
	// Server is the endpoint template; [[port]] is substituted.
	Server string `yaml:"server"`
	Ports  []int  `yaml:"ports"`

	// StartCommand and StopCommand manage one server instance;
	// [[port]] is substituted. Run via the shell in Workdir.
	StartCommand string `yaml:"start_command"`
	StopCommand  string `yaml:"stop_command"`
	Workdir      string `yaml:"workdir"`

	// StartupDelaySeconds bounds the readiness wait after starting.
	StartupDelaySeconds int `yaml:"startup_delay_seconds"`
}
