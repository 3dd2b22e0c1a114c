package domain

import (
	"encoding/json"
	"time"
)

// TranscriptSegment is one timed segment of a video transcript
type TranscriptSegment struct {
	Text     string   `json:"text"`
	Start    *float64 `json:"start"`
	Duration float64  `json:"duration"`
}

// ExtractedChunk is one pre-extracted chunk of a document, note or slide deck
type ExtractedChunk struct {
	Text       string `json:"text"`
	PageNumber *int   `json:"page_number,omitempty"`
	Index      *int   `json:"index,omitempty"`
}

// ContentItem represents a video, document or note belonging to a collection.
// Exactly one of Transcript or ExtractedContent is populated, by source type.
// Transcript is kept as raw JSON: stored payloads are either an array of
// segments or a JSON-encoded string of that array, and the normalizer owns
// deciding which shape it is looking at.
type ContentItem struct {
	ID               string           `json:"id"`
	CollectionID     string           `json:"collection_id"`
	Type             SourceType       `json:"type"`
	Title            string           `json:"title"`
	URL              string           `json:"url,omitempty"`
	VideoID          string           `json:"video_id,omitempty"`
	Transcript       json.RawMessage  `json:"transcript,omitempty"`
	ExtractedContent []ExtractedChunk `json:"extracted_content,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at,omitempty"`
}

// CreateContentItemRequest is the request to register a content item
type CreateContentItemRequest struct {
	Type             string           `json:"type" binding:"required"`
	Title            string           `json:"title" binding:"required"`
	URL              string           `json:"url,omitempty"`
	VideoID          string           `json:"video_id,omitempty"`
	Transcript       json.RawMessage  `json:"transcript,omitempty"`
	ExtractedContent []ExtractedChunk `json:"extracted_content,omitempty"`
}

// ContentItemListResponse is the response for listing content items
type ContentItemListResponse struct {
	Items []*ContentItem `json:"items"`
	Total int            `json:"total"`
}
