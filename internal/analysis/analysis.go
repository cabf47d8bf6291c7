// Package analysis classifies comment text locally: a lexicon polarity
// scorer for sentiment plus fixed pattern groups for topical tags. No
// network calls, no shared mutable state; same input always yields the
// same result.
package analysis

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"commentpulse/internal/domain"
)

const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05

	// Normalization constant for the compound score.
	normAlpha = 15.0

	negationDamp   = -0.74
	negationWindow = 3
	exclaimBoost   = 0.292
	maxExclaim     = 3
	capsEmphasis   = 0.733
)

// Result is the classification of a single comment.
type Result struct {
	Sentiment domain.Sentiment
	Score     float64
	Tags      []string
}

type tagRule struct {
	name     string
	patterns []*regexp.Regexp
}

// Analyzer is the pure comment classifier.
type Analyzer struct {
	tagRules []tagRule
}

// New compiles the tag pattern groups and returns an Analyzer.
func New() *Analyzer {
	compile := func(patterns ...string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, len(patterns))
		for i, p := range patterns {
			out[i] = regexp.MustCompile(`(?i)` + p)
		}
		return out
	}

	return &Analyzer{
		tagRules: []tagRule{
			{name: "question", patterns: compile(
				`\?`,
				`^(what|why|how|when|where|who|which|can|could|would|should|is|are|do|does)\b`,
			)},
			{name: "suggestion", patterns: compile(
				`you should`,
				`please make`,
				`would love (to see|if)`,
				`it would be (great|nice|cool)`,
				`can you (make|do|try)`,
				`next (video|time)`,
			)},
			{name: "collab_request", patterns: compile(
				`collab`,
				`feature me`,
				`work together`,
				`let'?s (do|make)`,
				`dm me`,
				`reach out`,
				`contact me`,
			)},
			{name: "feedback", patterns: compile(
				`(great|good|nice|awesome|amazing|love) (video|content|work)`,
				`keep (it )?up`,
				`well done`,
				`appreciate`,
				`thank(s| you)`,
			)},
			{name: "urgent", patterns: compile(
				`(help|please|urgent|asap|emergency)`,
				`need (help|assistance)`,
				`important`,
			)},
			{name: "viral_potential", patterns: compile(
				`\b(omg|lol|lmao|dead|crying)\b`,
				"\U0001F525|\U0001F480|\U0001F602|\U0001F923|❤",
				`this is (gold|fire|amazing)`,
				`best (video|content)`,
			)},
		},
	}
}

// Classify scores one comment. Empty or unscorable text is neutral with
// score 0 and no tags; there is no error path.
func (a *Analyzer) Classify(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Sentiment: domain.SentimentNeutral, Tags: []string{}}
	}

	compound := a.compound(text)

	var label domain.Sentiment
	switch {
	case compound >= positiveThreshold:
		label = domain.SentimentPositive
	case compound <= negativeThreshold:
		label = domain.SentimentNegative
	default:
		label = domain.SentimentNeutral
	}

	return Result{
		Sentiment: label,
		Score:     math.Abs(compound),
		Tags:      a.tags(text),
	}
}

// compound produces a polarity value in [-1, 1].
func (a *Analyzer) compound(text string) float64 {
	tokens := tokenize(text)

	var sum float64
	for i, tok := range tokens {
		v, ok := valence[tok.lower]
		if !ok {
			continue
		}

		// ALL-CAPS sentiment words carry extra weight.
		if tok.allCaps {
			if v > 0 {
				v += capsEmphasis
			} else {
				v -= capsEmphasis
			}
		}

		// Boosters immediately before the word scale it.
		if i > 0 {
			if b, ok := boosters[tokens[i-1].lower]; ok {
				if v < 0 {
					b = -b
				}
				v += b
			}
		}

		// A negation within the preceding window flips the polarity.
		for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
			if negations[tokens[j].lower] {
				v *= negationDamp
				break
			}
		}

		sum += v
	}

	if sum == 0 {
		return 0
	}

	// Trailing exclamation marks amplify whatever polarity is present.
	bangs := 0
	for i := len(text) - 1; i >= 0 && text[i] == '!'; i-- {
		bangs++
	}
	if bangs > maxExclaim {
		bangs = maxExclaim
	}
	emphasis := float64(bangs) * exclaimBoost
	if sum > 0 {
		sum += emphasis
	} else {
		sum -= emphasis
	}

	return sum / math.Sqrt(sum*sum+normAlpha)
}

// tags evaluates every pattern group; the result is a union, so group
// order never affects membership.
func (a *Analyzer) tags(text string) []string {
	tags := []string{}
	for _, rule := range a.tagRules {
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				tags = append(tags, rule.name)
				break
			}
		}
	}
	return tags
}

type token struct {
	lower   string
	allCaps bool
}

func tokenize(text string) []token {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		stripped := strings.ReplaceAll(f, "'", "")
		if stripped == "" {
			continue
		}
		upper := strings.ToUpper(stripped)
		tokens = append(tokens, token{
			lower:   strings.ToLower(stripped),
			allCaps: stripped == upper && len(stripped) > 1 && stripped != strings.ToLower(stripped),
		})
	}
	return tokens
}
