// Package chatbot matches customer messages against a keyword knowledge base.
package chatbot

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/deppfellow/storefront/internal/lib/utils"
)

const (
	IntentFallback    = "fallback"
	IntentHuman       = "human"
	IntentOrderStatus = "order_status"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

type Answer struct {
	Reply        string   `yaml:"reply"`
	QuickReplies []string `yaml:"quick_replies"`
}

type Intent struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Handoff  bool     `yaml:"handoff"`
	Answer   `yaml:",inline"`
}

type KnowledgeBase struct {
	Fallback Answer   `yaml:"fallback"`
	Intents  []Intent `yaml:"intents"`
}

// Match is the result of scoring one message.
type Match struct {
	Intent  string
	Score   int
	Handoff bool
	Answer  Answer
}

// Load parses a YAML knowledge base. Keywords are normalized on load.
func Load(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if len(kb.Intents) == 0 {
		return nil, fmt.Errorf("knowledge base has no intents")
	}

	seen := map[string]bool{}
	for i := range kb.Intents {
		in := &kb.Intents[i]
		if in.Name == "" || seen[in.Name] {
			return nil, fmt.Errorf("intent %d has an empty or duplicate name %q", i, in.Name)
		}
		seen[in.Name] = true
		for j, kw := range in.Keywords {
			in.Keywords[j] = strings.Join(tokenize(kw), " ")
		}
	}
	return &kb, nil
}

// Default returns the embedded knowledge base.
func Default() *KnowledgeBase {
	kb, err := Load(defaultKnowledge)
	if err != nil {
		panic(err)
	}
	return kb
}

// Match scores message against every intent. Single-word keywords match whole
// words; phrases match as word sequences. Ties go to the intent listed first.
func (kb *KnowledgeBase) Match(message string) Match {
	tokens := tokenize(message)
	text := " " + strings.Join(tokens, " ") + " "

	words := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		words[t] = true
	}

	best := Match{Intent: IntentFallback, Answer: kb.Fallback}
	for _, in := range kb.Intents {
		score := 0
		for _, kw := range in.Keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(text, " "+kw+" ") {
					score += 2
				}
			} else if words[kw] {
				score++
			}
		}
		if score > best.Score {
			best = Match{Intent: in.Name, Score: score, Handoff: in.Handoff, Answer: in.Answer}
		}
	}
	return best
}

// Intent returns the named intent's answer.
func (kb *KnowledgeBase) Intent(name string) (Intent, bool) {
	for _, in := range kb.Intents {
		if in.Name == name {
			return in, true
		}
	}
	return Intent{}, false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(utils.Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ReferenceFinder extracts order references like ORD-cv1h2k3l4m5n6o7p8q9r from text.
type ReferenceFinder struct {
	prefix string
	re     *regexp.Regexp
}

func NewReferenceFinder(prefix string) *ReferenceFinder {
	return &ReferenceFinder{
		prefix: prefix,
		re:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(prefix) + `-([0-9a-v]{20})\b`),
	}
}

// Find returns the first reference in text, canonicalized, or "".
func (f *ReferenceFinder) Find(text string) string {
	m := f.re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return f.prefix + "-" + strings.ToLower(m[1])
}
