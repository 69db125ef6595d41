// Package citeproc renders citation sections through an external
// citeproc-js-server formatting service.
package citeproc

import (
	"strconv"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
	"github.com/cassius-cv/cassius/internal/render"
)

// Name is a CSL-JSON personal name.
type Name struct {
	Family string `json:"family"`
	Given  string `json:"given"`
}

// Date is a CSL-JSON structured date.
type Date struct {
	DateParts [][]int `json:"date-parts"`
}

// Item is one CSL-JSON bibliography entry. Volume and Issue are sent
// as ints when the source value is numeric, otherwise as strings.
type Item struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Author         []Name `json:"author,omitempty"`
	Editor         []Name `json:"editor,omitempty"`
	Publisher      string `json:"publisher,omitempty"`
	PublisherPlace string `json:"publisher-place,omitempty"`
	Issued         *Date  `json:"issued,omitempty"`
	ContainerTitle string `json:"container-title,omitempty"`
	Volume         any    `json:"volume,omitempty"`
	Issue          any    `json:"issue,omitempty"`
	Page           string `json:"page,omitempty"`
	DOI            string `json:"DOI,omitempty"`
	Event          string `json:"event,omitempty"`
	EventPlace     string `json:"event-place,omitempty"`
}

// BuildItem converts a record into its CSL-JSON entry for the given
// category. The item id is "<ordinal>-<year>". The record's uri is
// rewritten to the official URL here when gold-OA linking applies, so
// the fragment link built later points at the published version.
func BuildItem(rec record.Record, cat config.Category, ordinal int, year string) *Item {
	item := &Item{
		ID:    strconv.Itoa(ordinal) + "-" + year,
		Type:  cat.CiteprocType,
		Title: rec.Title(),
	}

	item.Author = names(rec.Creators())
	item.Editor = names(rec.Editors())

	item.Publisher = rec.Str(record.FieldPublisher)
	item.PublisherPlace = rec.Str(record.FieldPubPlace)

	item.Issued = issuedDate(rec)
	item.ContainerTitle = containerTitle(rec)

	item.Volume = numericOrString(rec, record.FieldVolume)
	item.Issue = numericOrString(rec, record.FieldNumber)

	item.Page = rec.Str(record.FieldPageRange)
	item.DOI = rec.Str(record.FieldDOI)

	render.LinkOfficialURL(rec, cat)

	item.Event = rec.Str(record.FieldEventTitle)
	if place, ok := rec.StrOK(record.FieldEventPlace); ok {
		item.EventPlace = place
		item.PublisherPlace = place
		// Events get the precise date when the record carries one.
		if parts := render.DateParts(rec); len(parts) > 1 {
			item.Issued = &Date{DateParts: [][]int{parts}}
		}
	}

	return item
}

func names(persons []record.Person) []Name {
	if len(persons) == 0 {
		return nil
	}
	out := make([]Name, len(persons))
	for i, p := range persons {
		out[i] = Name{Family: p.Name.Family, Given: p.Name.Given}
	}
	return out
}

func issuedDate(rec record.Record) *Date {
	parts := render.DateParts(rec)
	if len(parts) == 0 {
		return nil
	}
	return &Date{DateParts: [][]int{parts[:1]}}
}

// containerTitle picks publication over book_title. Book records get
// no container at all: the repository sometimes sets both title and
// book_title on a book, which confuses the formatter.
func containerTitle(rec record.Record) string {
	if rec.Type() == "book" {
		return ""
	}
	if pub, ok := rec.StrOK(record.FieldPublication); ok {
		return pub
	}
	return rec.Str(record.FieldBookTitle)
}

func numericOrString(rec record.Record, field string) any {
	s, ok := rec.StrOK(field)
	if !ok || s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}
