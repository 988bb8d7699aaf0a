// Package catalog reads the static canon reference feed: template items and
// zone templates used to seed a new zone's assignment rows. The feed is
// read-only; nothing in this package writes back to it.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Item is one canon template item.
type Item struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Unit       string   `json:"unit"`
	Category   string   `json:"category"`
	DefaultPar *float64 `json:"default_par,omitempty"`
}

// ZoneTemplate is a canned zone layout: a zone type plus the canon items it
// usually holds, in shelf order.
type ZoneTemplate struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ZoneType string   `json:"zone_type"`
	ItemIDs  []string `json:"item_ids"`
}

// Feed is the parsed canon catalog.
type Feed struct {
	Items         []Item         `json:"items"`
	ZoneTemplates []ZoneTemplate `json:"zone_templates"`

	byItemID     map[string]*Item
	byTemplateID map[string]*ZoneTemplate
}

// Parse decodes a feed from r and indexes it.
func Parse(r io.Reader) (*Feed, error) {
	feed := &Feed{}
	if err := json.NewDecoder(r).Decode(feed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog feed: %w", err)
	}
	feed.index()
	return feed, nil
}

// LoadFile reads and parses the feed at path.
func LoadFile(path string) (*Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog feed: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func (f *Feed) index() {
	f.byItemID = make(map[string]*Item, len(f.Items))
	for i := range f.Items {
		f.byItemID[f.Items[i].ID] = &f.Items[i]
	}
	f.byTemplateID = make(map[string]*ZoneTemplate, len(f.ZoneTemplates))
	for i := range f.ZoneTemplates {
		f.byTemplateID[f.ZoneTemplates[i].ID] = &f.ZoneTemplates[i]
	}
}

// Item looks up a canon item by id.
func (f *Feed) Item(id string) (*Item, bool) {
	item, ok := f.byItemID[id]
	return item, ok
}

// Template looks up a zone template by id.
func (f *Feed) Template(id string) (*ZoneTemplate, bool) {
	tmpl, ok := f.byTemplateID[id]
	return tmpl, ok
}
