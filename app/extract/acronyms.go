package extract

import (
	"regexp"

	"github.com/lysyi3m/signal-comb/app/reservoir"
)

// acronymStoplist holds common real-world abbreviations that make useless
// candidates no matter how often they occur.
var acronymStoplist = map[string]struct{}{
	"USA": {}, "HTTP": {}, "CPU": {}, "GPU": {}, "API": {}, "WWW": {},
	"COVID": {}, "NASA": {}, "FBI": {}, "CIA": {}, "UK": {}, "EU": {},
	"NBA": {}, "FIFA": {}, "UFC": {}, "SSN": {}, "DOB": {}, "ETA": {},
	"DIY": {},
}

var acronymRe = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// AcronymCandidates scans reservoir text for whole words of 2-5 consecutive
// uppercase letters, skips the stoplist, and returns the top n candidates
// by descending hit count.
func AcronymCandidates(rows []reservoir.Row, topN int) []Candidate {
	type tally struct {
		hits int
		urls []string
	}
	counts := make(map[string]*tally)

	for _, row := range rows {
		for _, tok := range acronymRe.FindAllString(row.Text, -1) {
			if _, stop := acronymStoplist[tok]; stop {
				continue
			}
			cur, ok := counts[tok]
			if !ok {
				cur = &tally{}
				counts[tok] = cur
			}
			cur.hits++
			if row.URL != "" && len(cur.urls) < maxEvidence && !contains(cur.urls, row.URL) {
				cur.urls = append(cur.urls, row.URL)
			}
		}
	}

	candidates := make([]Candidate, 0, len(counts))
	for term, t := range counts {
		candidates = append(candidates, Candidate{Term: term, Freq: t.hits, Score: float64(t.hits), Evidence: t.urls})
	}

	sortCandidates(candidates)
	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}
