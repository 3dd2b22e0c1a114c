package domain

// SourceType identifies the medium a passage came from
type SourceType string

const (
	SourceYouTube SourceType = "youtube"
	SourcePDF     SourceType = "pdf"
	SourceTXT     SourceType = "txt"
	SourcePPT     SourceType = "ppt"
	SourcePPTX    SourceType = "pptx"
)

// LocationType identifies how a location value is interpreted
type LocationType string

const (
	LocationTimestamp LocationType = "timestamp"
	LocationPage      LocationType = "page"
	LocationSection   LocationType = "section"
	LocationSlide     LocationType = "slide"
)

// LocationTypeFor returns the location type that pairs with a source type
func LocationTypeFor(st SourceType) LocationType {
	switch st {
	case SourceYouTube:
		return LocationTimestamp
	case SourcePDF:
		return LocationPage
	case SourcePPT, SourcePPTX:
		return LocationSlide
	default:
		return LocationSection
	}
}

// IsValidSourceType reports whether s names a supported medium
func IsValidSourceType(s string) bool {
	switch SourceType(s) {
	case SourceYouTube, SourcePDF, SourceTXT, SourcePPT, SourcePPTX:
		return true
	}
	return false
}

// Location pinpoints a position inside a source medium.
// Timestamps are elapsed seconds; pages, slides and sections are 1-based.
type Location struct {
	Type  LocationType `json:"type"`
	Value int          `json:"value"`
}

// Source describes where a passage came from
type Source struct {
	Type     SourceType `json:"type"`
	Title    string     `json:"title"`
	Location Location   `json:"location"`
}

// Passage is a unit of source text paired with its provenance.
// Passages are ephemeral: rebuilt from content items for every question.
type Passage struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}
