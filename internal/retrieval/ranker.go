package retrieval

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/luminakb/lumina/internal/domain"
	"github.com/luminakb/lumina/internal/llm"
)

const defaultTopK = 8

// Ranker selects the passages most relevant to a question by embedding
// similarity. It never fails a question: embedding errors degrade to
// zero similarity, and total degradation falls back to unranked passages.
type Ranker struct {
	embedder llm.Embedder
	logger   *zap.Logger
}

// NewRanker creates a new ranker
func NewRanker(embedder llm.Embedder, logger *zap.Logger) *Ranker {
	return &Ranker{embedder: embedder, logger: logger}
}

type scoredPassage struct {
	passage domain.Passage
	score   float64
}

// Rank returns up to limit passages ordered by descending relevance to
// the question. An empty input yields an empty result; the caller is
// expected to short-circuit instead of asking the model.
func (r *Ranker) Rank(ctx context.Context, question string, passages []domain.Passage, limit int) []domain.Passage {
	if len(passages) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = defaultTopK
	}

	candidates := filterByMedium(question, passages)

	scores := r.score(ctx, question, candidates)

	scored := make([]scoredPassage, 0, len(candidates))
	for i, p := range candidates {
		if scores[i] > 0 {
			scored = append(scored, scoredPassage{passage: p, score: scores[i]})
		}
	}

	// total degradation: every embedding failed or scored zero, return
	// unranked passages so the caller can still proceed
	if len(scored) == 0 {
		if len(candidates) > limit {
			return candidates[:limit]
		}
		return candidates
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]domain.Passage, len(scored))
	for i, s := range scored {
		out[i] = s.passage
	}
	return out
}

// score embeds the question and every candidate in a single batch and
// returns per-candidate cosine similarities. A provider failure zeroes
// every score rather than erroring.
func (r *Ranker) score(ctx context.Context, question string, candidates []domain.Passage) []float64 {
	scores := make([]float64, len(candidates))

	inputs := make([]string, 0, len(candidates)+1)
	inputs = append(inputs, question)
	for _, p := range candidates {
		inputs = append(inputs, p.Text)
	}

	vectors, err := r.embedder.Embed(ctx, inputs)
	if err != nil || len(vectors) != len(inputs) {
		if err != nil {
			r.logger.Warn("embedding failed, degrading to unranked retrieval", zap.Error(err))
		}
		return scores
	}

	queryVec := vectors[0]
	for i := range candidates {
		scores[i] = CosineSimilarity(queryVec, vectors[i+1])
	}
	return scores
}

// mediumKeywords maps question keywords to the source types they prefer
var mediumKeywords = []struct {
	words []string
	types []domain.SourceType
}{
	{[]string{"video", "youtube"}, []domain.SourceType{domain.SourceYouTube}},
	{[]string{"pdf", "document"}, []domain.SourceType{domain.SourcePDF}},
	{[]string{"powerpoint", "presentation"}, []domain.SourceType{domain.SourcePPT, domain.SourcePPTX}},
	{[]string{"text"}, []domain.SourceType{domain.SourceTXT}},
}

// filterByMedium restricts the candidate set to passages whose medium
// the question names. This is a precision heuristic, not a hard filter:
// if nothing matches, the full set is kept.
func filterByMedium(question string, passages []domain.Passage) []domain.Passage {
	q := strings.ToLower(question)

	wanted := make(map[domain.SourceType]bool)
	for _, kw := range mediumKeywords {
		for _, w := range kw.words {
			if strings.Contains(q, w) {
				for _, t := range kw.types {
					wanted[t] = true
				}
				break
			}
		}
	}
	if len(wanted) == 0 {
		return passages
	}

	var filtered []domain.Passage
	for _, p := range passages {
		if wanted[p.Source.Type] {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return passages
	}
	return filtered
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or empty vectors score zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
