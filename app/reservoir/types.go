package reservoir

import "time"

// Row is the projection of a DiscoveryItem that downstream extractors
// consume; provenance fields are dropped.
type Row struct {
	Text      string    `json:"text"`
	URL       string    `json:"url"`
	Lang      string    `json:"lang,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
