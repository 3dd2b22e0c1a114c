package passage

import (
	"encoding/json"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/luminakb/lumina/internal/domain"
)

func intPtr(i int) *int { return &i }

func TestParseTranscriptArray(t *testing.T) {
	raw := json.RawMessage(`[{"text":"hello","start":1.9,"duration":2}]`)
	segs, err := ParseTranscript(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 1 || segs[0].Text != "hello" || *segs[0].Start != 1.9 {
		t.Fatalf("unexpected segments: %+v", segs)
	}
}

func TestParseTranscriptJSONString(t *testing.T) {
	// stored payloads are sometimes a JSON string wrapping the array
	raw := json.RawMessage(`"[{\"text\":\"hello\",\"start\":3}]"`)
	segs, err := ParseTranscript(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 1 || *segs[0].Start != 3 {
		t.Fatalf("unexpected segments: %+v", segs)
	}
}

func TestParseTranscriptAbsent(t *testing.T) {
	segs, err := ParseTranscript(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if segs != nil {
		t.Fatalf("expected nil segments, got %+v", segs)
	}
}

func TestParseTranscriptMalformed(t *testing.T) {
	if _, err := ParseTranscript(json.RawMessage(`{"not":"an array"}`)); err == nil {
		t.Fatal("expected error for malformed transcript")
	}
}

func TestNormalizeYouTube(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	item := &domain.ContentItem{
		ID:    "v1",
		Type:  domain.SourceYouTube,
		Title: "My Video",
		Transcript: json.RawMessage(`[
			{"text":"Speed increased","start":6.7,"duration":3},
			{"text":"no start here","duration":2},
			{"text":"   ","start":12}
		]`),
	}

	passages := n.Normalize([]*domain.ContentItem{item})

	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	p := passages[0]
	if p.Text != "Speed increased" {
		t.Fatalf("unexpected text: %q", p.Text)
	}
	if p.Source.Location.Type != domain.LocationTimestamp || p.Source.Location.Value != 6 {
		t.Fatalf("unexpected location: %+v", p.Source.Location)
	}
}

func TestNormalizeDocumentLocations(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	item := &domain.ContentItem{
		ID:    "d1",
		Type:  domain.SourcePDF,
		Title: "Notes",
		ExtractedContent: []domain.ExtractedChunk{
			{Text: "page five content", PageNumber: intPtr(5)},
			{Text: "zero-indexed chunk", Index: intPtr(0)},
			{Text: "counted chunk"},
		},
	}

	passages := n.Normalize([]*domain.ContentItem{item})

	if len(passages) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(passages))
	}
	wantValues := []int{5, 1, 3}
	for i, p := range passages {
		if p.Source.Location.Type != domain.LocationPage {
			t.Fatalf("passage %d: unexpected location type %s", i, p.Source.Location.Type)
		}
		if p.Source.Location.Value != wantValues[i] {
			t.Fatalf("passage %d: location value = %d, want %d", i, p.Source.Location.Value, wantValues[i])
		}
	}
}

func TestNormalizeLocationTypesByMedium(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	items := []*domain.ContentItem{
		{Type: domain.SourceTXT, Title: "note", ExtractedContent: []domain.ExtractedChunk{{Text: "a"}}},
		{Type: domain.SourcePPTX, Title: "deck", ExtractedContent: []domain.ExtractedChunk{{Text: "b"}}},
	}

	passages := n.Normalize(items)

	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(passages))
	}
	if passages[0].Source.Location.Type != domain.LocationSection {
		t.Fatalf("txt location type = %s", passages[0].Source.Location.Type)
	}
	if passages[1].Source.Location.Type != domain.LocationSlide {
		t.Fatalf("pptx location type = %s", passages[1].Source.Location.Type)
	}
}

func TestNormalizeSkipsMalformedItem(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	items := []*domain.ContentItem{
		{ID: "bad", Type: domain.SourceYouTube, Title: "Broken", Transcript: json.RawMessage(`{{{`)},
		{ID: "ok", Type: domain.SourceTXT, Title: "Good", ExtractedContent: []domain.ExtractedChunk{{Text: "kept"}}},
	}

	passages := n.Normalize(items)

	if len(passages) != 1 || passages[0].Text != "kept" {
		t.Fatalf("expected only the good item's passage, got %+v", passages)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	items := []*domain.ContentItem{
		{Type: domain.SourceYouTube, Title: "V", Transcript: json.RawMessage(`[{"text":"x","start":1}]`)},
		{Type: domain.SourcePDF, Title: "D", ExtractedContent: []domain.ExtractedChunk{{Text: "y"}, {Text: "z"}}},
	}

	first := n.Normalize(items)
	second := n.Normalize(items)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
