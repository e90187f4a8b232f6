package reservoir

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/lysyi3m/signal-comb/app/provider"
)

const (
	// MaxTextLength bounds memory per row.
	MaxTextLength = 240

	DefaultSimilarityThreshold = 0.92
)

var markupTagRe = regexp.MustCompile(`<[^>]+>`)

// Normalizer cleans row text, drops denylisted rows and collapses exact-URL
// and near-duplicate rows.
type Normalizer struct {
	denylist     []string
	simThreshold float64
}

func NewNormalizer(denylist []string, simThreshold float64) *Normalizer {
	if simThreshold <= 0 || simThreshold > 1 {
		simThreshold = DefaultSimilarityThreshold
	}
	lowered := make([]string, 0, len(denylist))
	for _, d := range denylist {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			lowered = append(lowered, d)
		}
	}
	return &Normalizer{denylist: lowered, simThreshold: simThreshold}
}

// Run normalizes text, filters denylisted rows and deduplicates the merged
// set. The similarity pass is worst-case quadratic in accepted rows, which
// is acceptable because per-cycle volume is bounded by the Budget.
func (n *Normalizer) Run(items []provider.DiscoveryItem) []provider.DiscoveryItem {
	seen := make(map[string]struct{}, len(items))
	accepted := make([]provider.DiscoveryItem, 0, len(items))

	for _, item := range items {
		item.Text = NormalizeText(item.Text)
		item.Lang = canonicalLang(item.Lang)
		if item.Text == "" || item.URL == "" {
			continue
		}
		if n.denied(item.Text) {
			continue
		}
		if _, dup := seen[item.URL]; dup {
			continue
		}

		nearDup := false
		for _, a := range accepted {
			if Similarity(item.Text, a.Text) >= n.simThreshold {
				nearDup = true
				break
			}
		}
		if nearDup {
			continue
		}

		seen[item.URL] = struct{}{}
		accepted = append(accepted, item)
	}

	return accepted
}

func (n *Normalizer) denied(text string) bool {
	lowered := strings.ToLower(text)
	for _, d := range n.denylist {
		if strings.Contains(lowered, d) {
			return true
		}
	}
	return false
}

// NormalizeText strips markup tags, collapses whitespace runs to a single
// space, trims and clips to MaxTextLength.
func NormalizeText(s string) string {
	s = markupTagRe.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > MaxTextLength {
		cut := MaxTextLength
		// Avoid splitting a multi-byte rune at the cut point.
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

// Similarity is word-set Jaccard: intersection over union of the lowercased
// token sets of both texts.
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	inter := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// canonicalLang reduces provider-reported language tags to their base
// ("en-US" becomes "en"); unknown or undetermined tags become empty.
func canonicalLang(lang string) string {
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}
