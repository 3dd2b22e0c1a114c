package citation

import (
	"fmt"
	"strings"

	"github.com/luminakb/lumina/internal/domain"
)

// SystemPrompt is the instruction contract for cited answers. The model
// is told to place each tag immediately after the span it supports and
// to quote cited text verbatim; the decoder stays defensive regardless.
const SystemPrompt = `You are a knowledge-base assistant. Answer the question using ONLY the provided context passages.

Each passage ends with a citation tag of the form {{ref:type:title:location}}. When your answer uses a passage, reproduce that passage's tag immediately after the sentence it supports. Rules:
- Place each tag directly after the text it supports, never batched at the end of the answer.
- Copy tags exactly as given; do not invent, alter or abbreviate tags.
- Quote cited text faithfully; do not paraphrase beyond recognition.
- If the context does not answer the question, say so plainly without tags.`

// BuildContext concatenates ranked passages with their citation tags
// into the context block sent to the model.
func BuildContext(passages []domain.Passage) string {
	blocks := make([]string, 0, len(passages))
	for _, p := range passages {
		blocks = append(blocks, p.Text+" "+FormatTag(p.Source))
	}
	return strings.Join(blocks, "\n\n")
}

// BuildUserPrompt assembles the user-turn prompt from the question and
// the ranked context block.
func BuildUserPrompt(question string, passages []domain.Passage) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", BuildContext(passages), question)
}
