package passage

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/luminakb/lumina/internal/domain"
)

// Normalizer flattens heterogeneous content items into a uniform passage
// list. Passages are rebuilt from scratch on every call; the normalizer
// holds no per-call state.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts a collection's content items into passages. A
// malformed item is logged and skipped; the rest of the collection
// still normalizes.
func (n *Normalizer) Normalize(items []*domain.ContentItem) []domain.Passage {
	var passages []domain.Passage
	for _, item := range items {
		if item == nil {
			continue
		}
		if item.Type == domain.SourceYouTube {
			segs, err := ParseTranscript(item.Transcript)
			if err != nil {
				n.logger.Warn("skipping item with malformed transcript",
					zap.String("item_id", item.ID),
					zap.String("title", item.Title),
					zap.Error(err),
				)
				continue
			}
			passages = append(passages, transcriptPassages(item, segs)...)
			continue
		}
		passages = append(passages, chunkPassages(item)...)
	}
	return passages
}

// ParseTranscript decodes a stored transcript payload. Payloads arrive
// either as a JSON array of segments or as a JSON string containing
// that array; an absent payload is an empty transcript.
func ParseTranscript(raw json.RawMessage) ([]domain.TranscriptSegment, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var segs []domain.TranscriptSegment
	if err := json.Unmarshal(raw, &segs); err == nil {
		return segs, nil
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("transcript is neither an array nor a string: %w", err)
	}
	if strings.TrimSpace(encoded) == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(encoded), &segs); err != nil {
		return nil, fmt.Errorf("decode transcript string payload: %w", err)
	}
	return segs, nil
}

func transcriptPassages(item *domain.ContentItem, segs []domain.TranscriptSegment) []domain.Passage {
	passages := make([]domain.Passage, 0, len(segs))
	for _, seg := range segs {
		// segments without a numeric start cannot be cited, drop them
		if seg.Start == nil {
			continue
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		passages = append(passages, domain.Passage{
			Text: text,
			Source: domain.Source{
				Type:  domain.SourceYouTube,
				Title: item.Title,
				Location: domain.Location{
					Type:  domain.LocationTimestamp,
					Value: int(math.Floor(*seg.Start)),
				},
			},
		})
	}
	return passages
}

func chunkPassages(item *domain.ContentItem) []domain.Passage {
	locType := domain.LocationTypeFor(item.Type)
	passages := make([]domain.Passage, 0, len(item.ExtractedContent))
	counter := 0
	for _, chunk := range item.ExtractedContent {
		counter++
		text := strings.TrimSpace(chunk.Text)
		if text == "" {
			continue
		}
		// pages, slides and sections are all 1-based
		value := counter
		switch {
		case chunk.PageNumber != nil:
			value = *chunk.PageNumber
		case chunk.Index != nil:
			value = *chunk.Index + 1
		}
		passages = append(passages, domain.Passage{
			Text: text,
			Source: domain.Source{
				Type:     item.Type,
				Title:    item.Title,
				Location: domain.Location{Type: locType, Value: value},
			},
		})
	}
	return passages
}
