// Package record defines the core domain types for repository records.
package record

import (
	"fmt"
	"strconv"
)

// Record is one bibliographic entry from the repository JSON export.
// The export carries an open-ended field set, so records are kept as a
// string-keyed map and read through typed accessors rather than a fixed
// struct. Mutation is limited to the sanctioned pre-render
// normalizations (title quotes, italics markup, OA link substitution).
type Record map[string]any

// Person is a creator or editor entry.
type Person struct {
	Name PersonName `json:"name"`
}

// PersonName holds the family/given split used by the repository.
type PersonName struct {
	Family string `json:"family"`
	Given  string `json:"given"`
}

// Document describes one deposited file attached to a record.
type Document struct {
	URI        string `json:"uri"`
	URL        string `json:"url"`
	FormatDesc string `json:"formatdesc"`
}

// Field names used across the pipeline.
const (
	FieldTitle       = "title"
	FieldType        = "type"
	FieldDate        = "date"
	FieldRefereed    = "refereed"
	FieldCreators    = "creators"
	FieldEditors     = "editors"
	FieldPublication = "publication"
	FieldBookTitle   = "book_title"
	FieldVolume      = "volume"
	FieldNumber      = "number"
	FieldDOI         = "doi"
	FieldOAStatus    = "oa_status"
	FieldOfficialURL = "official_url"
	FieldFiles       = "files"
	FieldDocuments   = "documents"
	FieldURI         = "uri"
	FieldPublisher   = "publisher"
	FieldPubPlace    = "place_of_pub"
	FieldPageRange   = "pagerange"
	FieldEventTitle  = "event_title"
	FieldEventPlace  = "event_location"
)

// Has reports whether the record carries the named field.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Str returns the named field coerced to a string, or "" if absent.
// Numeric values from the JSON export are rendered without a decimal
// point when integral.
func (r Record) Str(key string) string {
	s, _ := r.StrOK(key)
	return s
}

// StrOK returns the named field as a string and whether it was present.
func (r Record) StrOK(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10), true
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return fmt.Sprintf("%v", val), true
	}
}

// SetStr overwrites a field with a string value. Used only for the
// pre-render title and uri normalizations.
func (r Record) SetStr(key, value string) {
	r[key] = value
}

// Title returns the record's title.
func (r Record) Title() string { return r.Str(FieldTitle) }

// Type returns the record's underlying database type tag.
func (r Record) Type() string { return r.Str(FieldType) }

// Persons decodes the named field (creators or editors) into an ordered
// person list. Returns nil if the field is absent or not a list.
func (r Record) Persons(key string) []Person {
	v, ok := r[key]
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	persons := make([]Person, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		var p Person
		if name, ok := m["name"].(map[string]any); ok {
			p.Name.Family, _ = name["family"].(string)
			p.Name.Given, _ = name["given"].(string)
		}
		persons = append(persons, p)
	}
	return persons
}

// Creators returns the record's ordered creator list.
func (r Record) Creators() []Person { return r.Persons(FieldCreators) }

// Editors returns the record's ordered editor list.
func (r Record) Editors() []Person { return r.Persons(FieldEditors) }

// Files decodes the files field into document descriptors.
func (r Record) Files() []Document { return r.documents(FieldFiles) }

// Documents decodes the documents field into document descriptors.
func (r Record) Documents() []Document { return r.documents(FieldDocuments) }

func (r Record) documents(key string) []Document {
	v, ok := r[key]
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	docs := make([]Document, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		var d Document
		d.URI, _ = m["uri"].(string)
		d.URL, _ = m["url"].(string)
		d.FormatDesc, _ = m["formatdesc"].(string)
		docs = append(docs, d)
	}
	return docs
}
