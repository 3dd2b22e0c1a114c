package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminakb/lumina/internal/domain"
)

func videoPassage(title string, seconds int, text string) domain.Passage {
	return domain.Passage{
		Text: text,
		Source: domain.Source{
			Type:     domain.SourceYouTube,
			Title:    title,
			Location: domain.Location{Type: domain.LocationTimestamp, Value: seconds},
		},
	}
}

func TestDecodeYouTubeCitation(t *testing.T) {
	p := videoPassage("My Video", 6, "Speed increased")
	raw := "Speed increased {{ref:youtube:My Video:6}}"

	decoded := Decode(raw, []domain.Passage{p})

	require.Len(t, decoded.References, 1)
	assert.Equal(t, "Speed increased", decoded.References[0].Text)
	assert.Equal(t, 6, decoded.References[0].Source.Location.Value)

	require.Len(t, decoded.Tokens, 2)
	assert.Equal(t, domain.TokenText, decoded.Tokens[0].Kind)
	assert.Equal(t, "Speed increased ", decoded.Tokens[0].Text)
	assert.Equal(t, domain.TokenReference, decoded.Tokens[1].Kind)
	assert.Equal(t, p.Source, decoded.Tokens[1].Reference.Source)
}

func TestDecodeRoundTrip(t *testing.T) {
	passages := []domain.Passage{
		videoPassage("Lecture One", 30, "Entropy always increases"),
		{
			Text: "Energy is conserved",
			Source: domain.Source{
				Type:     domain.SourcePDF,
				Title:    "Thermo Notes",
				Location: domain.Location{Type: domain.LocationPage, Value: 12},
			},
		},
	}

	raw := "First, entropy always increases " + FormatTag(passages[0].Source) +
		". Second, energy is conserved " + FormatTag(passages[1].Source) + "."

	decoded := Decode(raw, passages)

	require.Len(t, decoded.References, 2)

	// every reference token must carry the source the tag was built from
	var sources []domain.Source
	for _, tok := range decoded.Tokens {
		if tok.Kind == domain.TokenReference {
			sources = append(sources, tok.Reference.Source)
		}
	}
	require.Equal(t, []domain.Source{passages[0].Source, passages[1].Source}, sources)
}

func TestDecodeRepeatedCitationReusesReference(t *testing.T) {
	p := videoPassage("My Video", 6, "Speed increased")
	tag := FormatTag(p.Source)
	raw := "Start " + tag + " middle " + tag + " end"

	decoded := Decode(raw, []domain.Passage{p})

	assert.Len(t, decoded.References, 1)
	assert.Equal(t, "Start __REF_MARKER_0__ middle __REF_MARKER_0__ end", decoded.Content)
}

func TestDecodeMalformedTagStaysLiteral(t *testing.T) {
	p := videoPassage("My Video", 6, "Speed increased")
	raw := "Before {{ref:youtube:My Video}} after"

	decoded := Decode(raw, []domain.Passage{p})

	assert.Empty(t, decoded.References)
	assert.Equal(t, raw, decoded.Content)
	require.Len(t, decoded.Tokens, 1)
	assert.Equal(t, raw, decoded.Tokens[0].Text)
}

func TestDecodeUnresolvedTagStaysLiteral(t *testing.T) {
	p := videoPassage("My Video", 6, "Speed increased")
	raw := "Claim {{ref:youtube:Other Video:6}} more text"

	decoded := Decode(raw, []domain.Passage{p})

	assert.Empty(t, decoded.References)
	assert.Equal(t, raw, decoded.Content)
}

func TestDecodeMMSSLocation(t *testing.T) {
	p := videoPassage("My Video", 125, "Key point")
	raw := "Key point {{ref:youtube:My Video:2:05}}"

	decoded := Decode(raw, []domain.Passage{p})

	require.Len(t, decoded.References, 1)
	assert.Equal(t, 125, decoded.References[0].Source.Location.Value)
}

func TestDecodeNoTags(t *testing.T) {
	decoded := Decode("Plain answer without citations.", nil)

	assert.Empty(t, decoded.References)
	require.Len(t, decoded.Tokens, 1)
	assert.Equal(t, "Plain answer without citations.", decoded.Tokens[0].Text)
}

func TestBuildContextAppendsTags(t *testing.T) {
	p := videoPassage("My Video", 6, "Speed increased")
	ctx := BuildContext([]domain.Passage{p})
	assert.Equal(t, "Speed increased {{ref:youtube:My Video:6}}", ctx)
}
