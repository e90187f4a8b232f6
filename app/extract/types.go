package extract

// Candidate is a scored term pulled out of the reservoir. Evidence is capped
// at three distinct source URLs to bound payload size on hot terms.
type Candidate struct {
	Term     string   `json:"term"`
	Freq     int      `json:"freq"`
	Score    float64  `json:"score"`
	Evidence []string `json:"evidence,omitempty"`
}

// EmojiStat is one novelty-scored emoji from a reservoir pass.
type EmojiStat struct {
	Emoji string  `json:"emoji"`
	Freq  int     `json:"freq"`
	Score float64 `json:"score"`
}

const maxEvidence = 3
