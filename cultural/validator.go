// Package cultural implements the cultural validator (C4): a hot-path
// pipeline that checks StoryChunk claims for cultural authenticity and
// emits a ValidatedChunk, escalating from instant knowledge-base lookups
// to pattern heuristics to a model-backed fallback only when confidence
// stays low.
package cultural

import (
	"context"
	"math/rand"
	"strings"

	"github.com/lookatitude/beluga-ai/metrics"
	"github.com/lookatitude/beluga-ai/o11y"
)

// Claim is a single cultural assertion embedded in a StoryChunk, mirroring
// schema.StoryChunk's cultural_claims entries.
type Claim struct {
	Text     string
	Category string // character, proverb, language, custom, location, historical
}

// Chunk is the validator's input, matching the StoryChunk schema.
type Chunk struct {
	Text    string
	Culture string
	Claims  []Claim
	IsFinal bool
}

// Validated is the validator's output, matching the ValidatedChunk schema.
type Validated struct {
	Text           string
	Confidence     float64
	Corrections    []string
	RejectedClaims []string
	IsFinal        bool
}

// ModelFallback performs the model-backed validation used when
// confidence drops below ConfidenceThreshold. It must return quickly;
// the hot path budgets well under a second for this call.
type ModelFallback interface {
	Validate(ctx context.Context, text, culture string) (confidence float64, correctedText string, corrections []string, err error)
}

const (
	knowledgeBaseContradictedMultiplier = 0.3
	knowledgeBaseUnknownMultiplier      = 0.85
	overgeneralizationMultiplier        = 0.6
	cultureMixingMultiplier             = 0.7

	defaultConfidenceThreshold = 0.7
	defaultRejectThreshold     = 0.4
)

var hedgingPhrases = []string{
	"In some traditions, ",
	"It is often said that ",
	"According to some accounts, ",
}

var overgeneralizationMarkers = []string{
	"all africans", "every african", "africans always",
	"in africa they always", "african culture is",
	"all of africa", "the african way",
}

var mixableCultures = []string{
	"yoruba", "zulu", "kikuyu", "ashanti", "maasai",
	"igbo", "hausa", "wolof", "swahili",
}

// Validator runs the four-stage validation pipeline.
type Validator struct {
	kb                  KnowledgeBase
	fallback            ModelFallback
	confidenceThreshold float64
	rejectThreshold     float64
	rand                *rand.Rand
}

// Option configures a Validator.
type Option func(*Validator)

// WithKnowledgeBase overrides the default in-memory knowledge base.
func WithKnowledgeBase(kb KnowledgeBase) Option {
	return func(v *Validator) { v.kb = kb }
}

// WithModelFallback supplies the Level 3 model-backed validator. Without
// one, the pipeline skips straight from pattern heuristics to hedging.
func WithModelFallback(f ModelFallback) Option {
	return func(v *Validator) { v.fallback = f }
}

// WithThresholds overrides the confidence and reject thresholds.
func WithThresholds(confidence, reject float64) Option {
	return func(v *Validator) {
		v.confidenceThreshold = confidence
		v.rejectThreshold = reject
	}
}

// New builds a Validator with the given options, defaulting to the
// built-in knowledge base and the original thresholds (0.7 / 0.4).
func New(opts ...Option) *Validator {
	v := &Validator{
		kb:                  DefaultKnowledgeBase(),
		confidenceThreshold: defaultConfidenceThreshold,
		rejectThreshold:     defaultRejectThreshold,
		rand:                rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the full pipeline on chunk. It never errors: a failing
// model fallback is swallowed and the pattern-based confidence is kept,
// matching the hot-path budget the validator sits on.
func (v *Validator) Validate(ctx context.Context, chunk Chunk) Validated {
	ctx, span := o11y.StartSpan(ctx, "cultural.Validate", o11y.Attrs{
		"culture":     chunk.Culture,
		"claim_count": len(chunk.Claims),
	})
	defer span.End()

	text := chunk.Text
	confidence := 1.0
	var corrections []string
	var rejected []string

	// Level 1: knowledge base checks, instant.
	for _, claim := range chunk.Claims {
		switch v.checkKnowledgeBase(claim, chunk.Culture) {
		case kbConfirmed:
			// confidence stays high
		case kbContradicted:
			confidence *= knowledgeBaseContradictedMultiplier
			rejected = append(rejected, claim.Text)
		case kbUnknown:
			confidence *= knowledgeBaseUnknownMultiplier
		}
	}

	// Level 2: pattern heuristics.
	if hasOvergeneralization(text) {
		confidence *= overgeneralizationMultiplier
		corrections = append(corrections, "Overly broad cultural claim detected")
	}
	if hasCultureMixing(text, chunk.Culture) {
		confidence *= cultureMixingMultiplier
		corrections = append(corrections, "Possible culture mixing detected")
	}

	// Level 3: model-backed fallback, only below threshold.
	if confidence < v.confidenceThreshold && v.fallback != nil {
		if modelConfidence, correctedText, modelCorrections, err := v.fallback.Validate(ctx, text, chunk.Culture); err == nil {
			confidence = min(confidence, modelConfidence)
			if correctedText != "" {
				text = correctedText
				corrections = append(corrections, modelCorrections...)
			}
		}
	}

	// Level 4: policy — hedge low-confidence content rather than reject it.
	if confidence < v.rejectThreshold {
		text = v.addHedging(text)
	}

	span.SetAttributes(o11y.Attrs{"confidence": confidence, "rejected_count": len(rejected)})
	metrics.ObserveCulturalConfidence(confidence)

	return Validated{
		Text:           text,
		Confidence:     confidence,
		Corrections:    corrections,
		RejectedClaims: rejected,
		IsFinal:        chunk.IsFinal,
	}
}

type kbOutcome int

const (
	kbUnknown kbOutcome = iota
	kbConfirmed
	kbContradicted
)

func (v *Validator) checkKnowledgeBase(claim Claim, culture string) kbOutcome {
	claimLower := strings.ToLower(claim.Text)
	cultureLower := strings.ToLower(culture)

	switch claim.Category {
	case "character":
		for kbCulture, figure := range v.kb.AllTricksterFigures() {
			figureName := strings.ToLower(figure.Name)
			if !strings.Contains(claimLower, figureName) {
				continue
			}
			if kbCulture == cultureLower {
				return kbConfirmed
			}
			if !strings.Contains(claimLower, cultureLower) {
				return kbContradicted
			}
		}

	case "proverb":
		for kbCulture, proverbs := range v.kb.AllProverbs() {
			for _, proverb := range proverbs {
				proverbText := strings.ToLower(proverb.Text)
				if prefixMatch(proverbText, claimLower, 20) {
					if kbCulture == cultureLower {
						return kbConfirmed
					}
					return kbContradicted
				}
			}
		}

	case "language", "custom":
		if opening, ok := v.kb.StoryOpening(cultureLower); ok {
			if strings.Contains(claimLower, prefix(strings.ToLower(opening.Text), 15)) {
				return kbConfirmed
			}
		}
	}

	return kbUnknown
}

// prefixMatch reports whether either string's first n runes appear as a
// substring of the other, mirroring the original's bidirectional
// first-N-character comparison.
func prefixMatch(a, b string, n int) bool {
	return strings.Contains(b, prefix(a, n)) || strings.Contains(a, prefix(b, n))
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func hasOvergeneralization(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range overgeneralizationMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func hasCultureMixing(text, targetCulture string) bool {
	lower := strings.ToLower(text)
	target := strings.ToLower(targetCulture)

	mentioned := 0
	for _, c := range mixableCultures {
		if c == target {
			continue
		}
		if strings.Contains(lower, c) {
			mentioned++
		}
	}
	return mentioned > 1
}

func (v *Validator) addHedging(text string) string {
	if text == "" {
		return text
	}
	phrase := hedgingPhrases[v.rand.Intn(len(hedgingPhrases))]
	return phrase + strings.ToLower(text[:1]) + text[1:]
}
