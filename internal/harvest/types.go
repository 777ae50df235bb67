// Package harvest defines core types shared across subsystems.
package harvest

// PageRecord is persisted for each scraped article that survives cleaning.
// Length always refers to the cleaned text.
type PageRecord struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	URL    string `json:"url"`
	Length int    `json:"length"`
}

// CategoryMember is a single entry of a category listing. Subcategory is
// derived from the member's title prefix, not from namespace metadata, because
// the listing API reports both kinds of member the same way.
type CategoryMember struct {
	Title       string `json:"title"`
	Subcategory bool   `json:"subcategory"`
}

// AllPagesResult is one page of the site-wide article listing. Continue is the
// opaque token for the next page, empty when the listing is exhausted.
type AllPagesResult struct {
	Titles   []string
	Continue string
}

// Stats summarizes a scheduler run.
type Stats struct {
	TitlesProcessed int
	RecordsKept     int
	FetchErrors     int
	BatchesWritten  int
	ChunksLost      int
}

// Add merges the counters of another Stats into this one.
func (s *Stats) Add(other Stats) {
	s.TitlesProcessed += other.TitlesProcessed
	s.RecordsKept += other.RecordsKept
	s.FetchErrors += other.FetchErrors
	s.BatchesWritten += other.BatchesWritten
	s.ChunksLost += other.ChunksLost
}
