package tfidf

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"textvec/internal/domain"
)

// Vectorizer implements TF-IDF weighting over word n-grams.
// It builds a vocabulary from the corpus and computes smoothed IDF values.
type Vectorizer struct {
	maxFeatures  int
	ngramMin     int
	ngramMax     int
	vocabulary   map[string]int
	terms        []string
	idf          []float64
	dimension    int
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewVectorizer creates an unprepared vectorizer. Non-positive arguments fall
// back to 1000 features and unigrams plus bigrams.
func NewVectorizer(maxFeatures, ngramMin, ngramMax int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	if ngramMin <= 0 {
		ngramMin = 1
	}
	if ngramMax < ngramMin {
		ngramMax = max(ngramMin, 2)
	}
	return &Vectorizer{
		maxFeatures:  maxFeatures,
		ngramMin:     ngramMin,
		ngramMax:     ngramMax,
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`\b\w\w+\b`),
		stopwords:    defaultStopwords(),
	}
}

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (v *Vectorizer) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return &domain.DimensionError{Reason: "empty corpus"}
	}
	df := make(map[string]int)
	counts := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, term := range v.Analyze(text) {
			counts[term]++
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return &domain.DimensionError{
			Samples: len(corpus),
			Reason:  "empty vocabulary; the texts contain only stop words, digits or punctuation",
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if len(terms) > v.maxFeatures {
		// keep the most frequent terms corpus-wide
		sort.Slice(terms, func(i, j int) bool {
			if counts[terms[i]] != counts[terms[j]] {
				return counts[terms[i]] > counts[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.maxFeatures]
	}
	sort.Strings(terms)

	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	v.terms = terms
	v.dimension = len(terms)
	v.prepared = true
	return nil
}

// Dimension returns the vocabulary size.
func (v *Vectorizer) Dimension() int { return v.dimension }

// Terms returns the vocabulary in index order.
func (v *Vectorizer) Terms() []string { return append([]string(nil), v.terms...) }

// Embed computes the L2-normalised TF-IDF vector of text. Text without any
// vocabulary term yields a zero vector.
func (v *Vectorizer) Embed(text string) ([]float64, error) {
	if !v.prepared {
		return nil, domain.ErrNotFitted
	}
	vec := make([]float64, v.dimension)
	for _, term := range v.Analyze(text) {
		if idx, ok := v.vocabulary[term]; ok {
			vec[idx]++
		}
	}
	norm := 0.0
	for i := range vec {
		vec[i] *= v.idf[i]
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// Analyze turns text into the n-grams counted by the vectorizer: accents are
// folded to ASCII, text is lowercased, tokens of at least two word characters
// are kept unless they are stop words, and n-grams are joined with a space.
func (v *Vectorizer) Analyze(text string) []string {
	tokens := v.tokenize(foldAccents(text))
	var out []string
	for n := v.ngramMin; n <= v.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				out = append(out, tokens[i])
				continue
			}
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func (v *Vectorizer) tokenize(text string) []string {
	raw := v.tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := v.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Preprocess lowercases text, drops everything that is not an ASCII letter
// or whitespace and collapses whitespace runs. Applying it twice is the same
// as applying it once.
func Preprocess(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// String summarises the vectorizer settings for logs.
func (v *Vectorizer) String() string {
	return fmt.Sprintf("tfidf(max_features=%d, ngram=%d..%d, vocabulary=%d)", v.maxFeatures, v.ngramMin, v.ngramMax, v.dimension)
}
