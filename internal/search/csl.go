// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-agent/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-YAML schema so that
// output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID       string   `yaml:"id"`
	Type     string   `yaml:"type"`
	Title    string   `yaml:"title"`
	Abstract string   `yaml:"abstract,omitempty"`
	Issued   *CSLDate `yaml:"issued,omitempty"`
	URL      string   `yaml:"URL,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes docs as a CSL-YAML list to w.
func FormatCSL(docs []types.Document, w io.Writer) error {
	items := make([]CSLItem, len(docs))
	for i, d := range docs {
		items[i] = toCSLItem(d)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a Document to a CSLItem. The id is the arXiv identifier
// when the link carries one, else the link itself.
func toCSLItem(d types.Document) CSLItem {
	item := CSLItem{
		ID:       extractArxivID(d.Link),
		Type:     "article",
		Title:    d.Title,
		Abstract: d.Summary,
		URL:      d.Link,
	}
	if item.ID == "" {
		item.ID = d.Link
	}
	if !d.Published.IsZero() {
		item.Issued = &CSLDate{
			DateParts: [][]int{{d.Published.Year(), int(d.Published.Month()), d.Published.Day()}},
		}
	}
	return item
}
