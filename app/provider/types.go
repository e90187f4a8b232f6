package provider

import "time"

// DiscoveryItem is one raw content row fetched from an external source.
// Immutable once created; it lives for a single ingestion cycle unless the
// merged cycle output gets cached.
type DiscoveryItem struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Lang      string            `json:"lang,omitempty"`
	Source    string            `json:"source"`
	URL       string            `json:"url"`
	Timestamp time.Time         `json:"timestamp"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// RisingQuery is one scored entry from the trend explorer's related/rising
// queries widget.
type RisingQuery struct {
	Query string `json:"query"`
	Value int    `json:"value"`
}
