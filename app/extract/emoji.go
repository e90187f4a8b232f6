package extract

import (
	"math"
	"sort"

	"github.com/lysyi3m/signal-comb/app/reservoir"
)

// evergreen emoji are ubiquitous enough to dominate every ranking; their raw
// frequency is dampened so fresher terms can surface.
var evergreen = map[string]struct{}{
	"❤️": {},
	"😂": {},
	"🤣": {},
	"😍": {},
}

const evergreenDampening = 0.8

// commonStoplist is skipped entirely during reservoir frequency passes.
var commonStoplist = map[string]struct{}{
	"❤️": {},
	"❤":  {},
	"😂": {},
	"🤣": {},
	"😍": {},
	"😭": {},
	"✨":  {},
	"💕": {},
	"🔥": {},
	"🙏": {},
}

// maxEmojiPerRow bounds how many emoji one row can contribute to candidate
// counting, so a single spammy row cannot dominate.
const maxEmojiPerRow = 6

// EmojiCandidates counts emoji frequency across the reservoir, dampens
// evergreen emoji, drops denylisted terms and returns the top n candidates
// sorted by descending score.
func EmojiCandidates(rows []reservoir.Row, denylist []string, topN int) []Candidate {
	type tally struct {
		hits int
		urls []string
	}
	counts := make(map[string]*tally)

	for _, row := range rows {
		found := Emojis(row.Text)
		if len(found) > maxEmojiPerRow {
			found = found[:maxEmojiPerRow]
		}
		for _, e := range found {
			cur, ok := counts[e]
			if !ok {
				cur = &tally{}
				counts[e] = cur
			}
			cur.hits++
			if row.URL != "" && len(cur.urls) < maxEvidence && !contains(cur.urls, row.URL) {
				cur.urls = append(cur.urls, row.URL)
			}
		}
	}

	for _, d := range denylist {
		delete(counts, d)
	}

	candidates := make([]Candidate, 0, len(counts))
	for emoji, t := range counts {
		score := float64(t.hits)
		if _, ok := evergreen[emoji]; ok {
			score = math.Round(score * evergreenDampening)
		}
		candidates = append(candidates, Candidate{Term: emoji, Freq: t.hits, Score: score, Evidence: t.urls})
	}

	sortCandidates(candidates)
	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}

func sortCandidates(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Term < candidates[j].Term
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Emojis returns the emoji clusters found in text, in order of appearance.
// A cluster is a pictographic rune plus any trailing variation selector,
// skin-tone modifier or ZWJ-joined continuation.
func Emojis(text string) []string {
	runes := []rune(text)
	var found []string

	for i := 0; i < len(runes); {
		if !isPictographic(runes[i]) {
			i++
			continue
		}

		start := i
		i++
		for i < len(runes) {
			r := runes[i]
			switch {
			case r == 0xFE0F || isSkinTone(r):
				i++
			case r == 0x200D && i+1 < len(runes) && isPictographic(runes[i+1]):
				i += 2
			default:
				goto done
			}
		}
	done:
		found = append(found, string(runes[start:i]))
	}
	return found
}

func isPictographic(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols & pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport & map
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental symbols
		return true
	case r >= 0x1FA00 && r <= 0x1FAFF: // extended-A
		return true
	case r >= 0x2600 && r <= 0x26FF: // miscellaneous symbols
		return true
	case r >= 0x2700 && r <= 0x27BF: // dingbats, includes ❤
		return true
	case r >= 0x2B00 && r <= 0x2B55: // arrows and stars, includes ⭐
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	}
	return false
}

func isSkinTone(r rune) bool {
	return r >= 0x1F3FB && r <= 0x1F3FF
}
