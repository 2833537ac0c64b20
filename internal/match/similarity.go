package match

import (
	"math"
	"regexp"
	"strings"

	"github.com/predictwatch/arbscan/internal/domain"
)

// stopWords are removed before tokenization. They carry no matching signal
// and differ arbitrarily between the two platforms' phrasings.
var stopWords = map[string]struct{}{
	"yes": {}, "no": {}, "will": {}, "the": {}, "a": {}, "an": {}, "on": {},
	"in": {}, "by": {}, "to": {}, "of": {}, "and": {}, "or": {}, "be": {},
	"is": {}, "are": {}, "do": {}, "does": {}, "did": {}, "with": {},
	"for": {}, "this": {}, "that": {}, "at": {}, "it": {}, "from": {}, "as": {},
}

// monthAbbrevs anchor recurring markets to a point in time.
var monthAbbrevs = map[string]struct{}{
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "may": {}, "jun": {},
	"jul": {}, "aug": {}, "sep": {}, "oct": {}, "nov": {}, "dec": {},
}

// anchorEntities are high-specificity domain terms that generic token overlap
// under-weights on short titles.
var anchorEntities = map[string]struct{}{
	"biden": {}, "trump": {}, "btc": {}, "eth": {}, "bitcoin": {},
	"ethereum": {}, "fed": {}, "rate": {}, "inflation": {}, "recession": {},
	"nfl": {}, "nba": {}, "mlb": {}, "election": {}, "house": {},
	"senate": {}, "gdp": {}, "cpi": {},
}

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)
	yearRe     = regexp.MustCompile(`^20\d{2}$`)
	numericRe  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	tickerSeps = strings.NewReplacer("_", " ", "-", " ")
)

// Weights are the relative contributions of the three similarity signals.
// Token overlap is the primary recall signal but noisy on short titles;
// bigram cosine rewards shared phrasing order; anchors disambiguate
// near-duplicate templated questions such as different years of a recurring
// market.
type Weights struct {
	Token  float64
	Bigram float64
	Anchor float64
}

// DefaultWeights returns the tuned 0.5/0.3/0.2 weighting.
func DefaultWeights() Weights {
	return Weights{Token: 0.5, Bigram: 0.3, Anchor: 0.2}
}

// Profile is the tokenized view of one market's aggregated text, precomputed
// once so the matcher's pairwise loop does not re-tokenize.
type Profile struct {
	Tokens  map[string]struct{}
	Bigrams []string
	Anchors map[string]struct{}
}

// Scorer computes composite text similarity between market profiles.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given signal weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score combines token Jaccard, bigram cosine, and anchor Jaccard into a
// value in [0,1].
func (s *Scorer) Score(a, b Profile) float64 {
	return s.weights.Token*jaccard(a.Tokens, b.Tokens) +
		s.weights.Bigram*cosine(a.Bigrams, b.Bigrams) +
		s.weights.Anchor*jaccard(a.Anchors, b.Anchors)
}

// ScoreText scores two free-text descriptions directly. Anchors are drawn
// from the same text as the tokens.
func (s *Scorer) ScoreText(a, b string) float64 {
	return s.Score(textProfile(a), textProfile(b))
}

// BuildProfile aggregates a market's searchable text (title, category, tags,
// description, plus platform extras such as subtitle, rules text, and tickers
// with separators spaced out) and tokenizes it. Anchors come from the title
// and, for Kalshi, the event ticker, where they are most reliable.
func BuildProfile(m domain.UnifiedMarket) Profile {
	parts := []string{m.Title}
	if m.Category != "" {
		parts = append(parts, m.Category)
	}
	parts = append(parts, m.Tags...)
	if m.Description != "" {
		parts = append(parts, m.Description)
	}

	anchorText := m.Title
	if k := m.Kalshi; k != nil {
		if k.Subtitle != "" {
			parts = append(parts, k.Subtitle)
		}
		if k.RulesPrimary != "" {
			parts = append(parts, k.RulesPrimary)
		}
		if k.RulesSecondary != "" {
			parts = append(parts, k.RulesSecondary)
		}
		if k.EventTicker != "" {
			parts = append(parts, tickerSeps.Replace(k.EventTicker))
			anchorText += " " + tickerSeps.Replace(k.EventTicker)
		}
		if k.Ticker != "" {
			parts = append(parts, tickerSeps.Replace(k.Ticker))
		}
	}

	tokens := tokenize(strings.Join(parts, " "))
	return Profile{
		Tokens:  tokenSet(tokens),
		Bigrams: bigrams(tokens),
		Anchors: anchors(tokenize(anchorText)),
	}
}

func textProfile(text string) Profile {
	tokens := tokenize(text)
	return Profile{
		Tokens:  tokenSet(tokens),
		Bigrams: bigrams(tokens),
		Anchors: anchors(tokens),
	}
}

// tokenize lowercases, strips punctuation to spaces, drops stop words, and
// splits on whitespace.
func tokenize(s string) []string {
	s = nonAlnumRe.ReplaceAllString(strings.ToLower(s), " ")
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// bigrams joins adjacent token pairs for phrase-continuity comparison.
func bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens)-1)
	for i := 0; i < len(tokens)-1; i++ {
		out = append(out, tokens[i]+"_"+tokens[i+1])
	}
	return out
}

// anchors extracts high-specificity tokens: 4-digit years, bare numbers
// (percent signs are already stripped with other punctuation), month
// abbreviations, and known domain entities.
func anchors(tokens []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokens {
		switch {
		case yearRe.MatchString(t):
			set[t] = struct{}{}
		case numericRe.MatchString(t):
			set[t] = struct{}{}
		default:
			if _, ok := monthAbbrevs[t]; ok {
				set[t] = struct{}{}
			} else if _, ok := anchorEntities[t]; ok {
				set[t] = struct{}{}
			}
		}
	}
	return set
}

// jaccard is |A ∩ B| / |A ∪ B|, 0 for two empty sets.
func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// cosine compares bigram frequency vectors.
func cosine(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	fa := freq(a)
	fb := freq(b)

	var dot, na, nb float64
	for k, va := range fa {
		na += float64(va * va)
		if vb, ok := fb[k]; ok {
			dot += float64(va * vb)
		}
	}
	for _, vb := range fb {
		nb += float64(vb * vb)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func freq(items []string) map[string]int {
	m := make(map[string]int, len(items))
	for _, it := range items {
		m[it]++
	}
	return m
}
