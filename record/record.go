package record

import (
	"errors"
	"fmt"
	"strings"

	getsafe "github.com/w-h-a/ragchat/util/get_safe"
)

const (
	nameLabel       = "Country: "
	capitalLabel    = ", Capital: "
	populationLabel = ", Population: "
	areaLabel       = ", Area: "
)

var ErrMalformed = errors.New("malformed document text")

// Record is the fixed shape of one scraped country.
type Record struct {
	Name       string `json:"name"`
	Capital    string `json:"capital"`
	Population string `json:"population"`
	Area       string `json:"area"`
}

// Document is a Record rendered for storage in a collection.
type Document struct {
	Id       string `json:"id"`
	Text     string `json:"text"`
	Metadata Record `json:"metadata"`
}

func Render(r Record) string {
	var sb strings.Builder
	sb.WriteString(nameLabel)
	sb.WriteString(r.Name)
	sb.WriteString(capitalLabel)
	sb.WriteString(r.Capital)
	sb.WriteString(populationLabel)
	sb.WriteString(r.Population)
	sb.WriteString(areaLabel)
	sb.WriteString(r.Area)
	return sb.String()
}

// Parse recovers the four fields of a text produced by Render.
func Parse(text string) (Record, error) {
	rest, ok := strings.CutPrefix(text, nameLabel)
	if !ok {
		return Record{}, fmt.Errorf("%w: missing %q", ErrMalformed, strings.TrimSpace(nameLabel))
	}

	var r Record

	name, rest, ok := strings.Cut(rest, capitalLabel)
	if !ok {
		return Record{}, fmt.Errorf("%w: missing capital", ErrMalformed)
	}
	r.Name = name

	capital, rest, ok := strings.Cut(rest, populationLabel)
	if !ok {
		return Record{}, fmt.Errorf("%w: missing population", ErrMalformed)
	}
	r.Capital = capital

	population, area, ok := strings.Cut(rest, areaLabel)
	if !ok {
		return Record{}, fmt.Errorf("%w: missing area", ErrMalformed)
	}
	r.Population = population
	r.Area = area

	return r, nil
}

func DocumentId(index int) string {
	return fmt.Sprintf("country_%d", index)
}

// Documents renders records in input order with sequential ids.
func Documents(records []Record) []Document {
	docs := make([]Document, 0, len(records))
	for i, r := range records {
		docs = append(docs, Document{
			Id:       DocumentId(i),
			Text:     Render(r),
			Metadata: r,
		})
	}
	return docs
}

func (r Record) Metadata() map[string]any {
	return map[string]any{
		"name":       r.Name,
		"capital":    r.Capital,
		"population": r.Population,
		"area":       r.Area,
	}
}

func FromMetadata(meta map[string]any) Record {
	return Record{
		Name:       getsafe.String(meta, "name"),
		Capital:    getsafe.String(meta, "capital"),
		Population: getsafe.String(meta, "population"),
		Area:       getsafe.String(meta, "area"),
	}
}
