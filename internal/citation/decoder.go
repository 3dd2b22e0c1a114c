package citation

import (
	"strconv"
	"strings"

	"github.com/luminakb/lumina/internal/domain"
)

// Decoded is the structured form of a raw model answer: the content
// with resolved tags rewritten to positional markers, the ordered
// reference list those markers index into, and the renderable token
// stream. Marker i always maps to References[i].
type Decoded struct {
	Content    string
	References []domain.Reference
	Tokens     []domain.MessageToken
}

type refKey struct {
	sourceType domain.SourceType
	title      string
	value      int
}

// Decode scans a raw answer for citation tags and resolves them against
// the passages that were sent to the model for this turn. Decoding
// never fails: a malformed or unresolvable tag stays in the output as
// literal text, and only resolved tags become markers.
func Decode(raw string, candidates []domain.Passage) Decoded {
	index := make(map[refKey]domain.Passage, len(candidates))
	for _, p := range candidates {
		key := refKey{p.Source.Type, sanitizeTitle(p.Source.Title), p.Source.Location.Value}
		if _, exists := index[key]; !exists {
			index[key] = p
		}
	}

	var references []domain.Reference
	assigned := make(map[refKey]int)

	content := tagRe.ReplaceAllStringFunc(raw, func(tag string) string {
		body := strings.TrimSuffix(strings.TrimPrefix(tag, "{{ref:"), "}}")
		parsed, ok := parseTag(body)
		if !ok {
			return tag
		}
		key := refKey{parsed.sourceType, parsed.title, parsed.value}
		passage, ok := index[key]
		if !ok {
			return tag
		}
		i, seen := assigned[key]
		if !seen {
			i = len(references)
			assigned[key] = i
			references = append(references, domain.Reference{
				Text:   passage.Text,
				Source: passage.Source,
			})
		}
		return Marker(i)
	})

	return Decoded{
		Content:    content,
		References: references,
		Tokens:     tokenize(content, references),
	}
}

// tokenize splits marker-rewritten content into an ordered stream of
// text and reference tokens. Markers pointing outside the reference
// list degrade to literal text.
func tokenize(content string, references []domain.Reference) []domain.MessageToken {
	var tokens []domain.MessageToken
	last := 0
	for _, m := range markerRe.FindAllStringSubmatchIndex(content, -1) {
		if m[0] > last {
			tokens = append(tokens, domain.MessageToken{Kind: domain.TokenText, Text: content[last:m[0]]})
		}
		i, err := strconv.Atoi(content[m[2]:m[3]])
		if err == nil && i >= 0 && i < len(references) {
			ref := references[i]
			tokens = append(tokens, domain.MessageToken{Kind: domain.TokenReference, Reference: &ref})
		} else {
			tokens = append(tokens, domain.MessageToken{Kind: domain.TokenText, Text: content[m[0]:m[1]]})
		}
		last = m[1]
	}
	if last < len(content) {
		tokens = append(tokens, domain.MessageToken{Kind: domain.TokenText, Text: content[last:]})
	}
	return tokens
}
