package extract

import (
	"testing"

	"github.com/lysyi3m/signal-comb/app/reservoir"
)

func rowsWith(texts ...string) []reservoir.Row {
	rows := make([]reservoir.Row, 0, len(texts))
	for i, text := range texts {
		rows = append(rows, reservoir.Row{
			Text: text,
			URL:  "https://example.com/" + string(rune('a'+i)),
		})
	}
	return rows
}

func findCandidate(candidates []Candidate, term string) *Candidate {
	for i := range candidates {
		if candidates[i].Term == term {
			return &candidates[i]
		}
	}
	return nil
}

func TestEmojis_FindsBasicEmoji(t *testing.T) {
	found := Emojis("launch day 🚀 is here 🎉")
	if len(found) != 2 {
		t.Fatalf("Expected 2 emoji, got %d: %v", len(found), found)
	}
	if found[0] != "🚀" || found[1] != "🎉" {
		t.Errorf("Expected [🚀 🎉], got %v", found)
	}
}

func TestEmojis_KeepsVariationSelectorWithBase(t *testing.T) {
	found := Emojis("love it ❤️ truly")
	if len(found) != 1 {
		t.Fatalf("Expected 1 emoji cluster, got %d: %v", len(found), found)
	}
	if found[0] != "❤️" {
		t.Errorf("Expected the full ❤️ cluster, got %q", found[0])
	}
}

func TestEmojis_KeepsZWJSequenceTogether(t *testing.T) {
	found := Emojis("great work 🧑‍🚀 today")
	if len(found) != 1 {
		t.Fatalf("Expected 1 cluster for ZWJ sequence, got %d: %v", len(found), found)
	}
	if found[0] != "🧑‍🚀" {
		t.Errorf("Expected ZWJ sequence kept whole, got %q", found[0])
	}
}

func TestEmojis_IgnoresPlainText(t *testing.T) {
	if found := Emojis("no pictographs in this sentence at all"); len(found) != 0 {
		t.Errorf("Expected no emoji, got %v", found)
	}
}

func TestEmojiCandidates_DenylistExcludesTerm(t *testing.T) {
	// Two rows with 😂 and three with ❤️; 😂 is denylisted.
	rows := rowsWith(
		"that was funny 😂",
		"so funny 😂 again",
		"love this ❤️",
		"love that ❤️ more",
		"pure love ❤️ always",
	)

	candidates := EmojiCandidates(rows, []string{"😂"}, 10)

	if c := findCandidate(candidates, "😂"); c != nil {
		t.Error("Expected 😂 excluded by denylist")
	}
	heart := findCandidate(candidates, "❤️")
	if heart == nil {
		t.Fatal("Expected ❤️ in candidate list")
	}
	if heart.Freq != 3 {
		t.Errorf("Expected freq 3 for ❤️, got %d", heart.Freq)
	}
	// ❤️ is evergreen: 3 hits dampened by 0.8 rounds to 2.
	if heart.Score != 2 {
		t.Errorf("Expected dampened score 2 for ❤️, got %f", heart.Score)
	}
}

func TestEmojiCandidates_EvergreenDampening(t *testing.T) {
	rows := rowsWith(
		"goose time 🪿 honk",
		"more goose 🪿 content",
		"third goose 🪿 post",
		"crying laughing 😂 here",
		"crying laughing 😂 again",
		"crying laughing 😂 more",
	)

	candidates := EmojiCandidates(rows, nil, 10)

	goose := findCandidate(candidates, "🪿")
	laugh := findCandidate(candidates, "😂")
	if goose == nil || laugh == nil {
		t.Fatalf("Expected both candidates, got %v", candidates)
	}
	if goose.Score != 3 {
		t.Errorf("Expected full score 3 for 🪿, got %f", goose.Score)
	}
	if laugh.Score != 2 {
		t.Errorf("Expected dampened score 2 for evergreen 😂, got %f", laugh.Score)
	}
	if candidates[0].Term != "🪿" {
		t.Errorf("Expected 🪿 ranked first, got %q", candidates[0].Term)
	}
}

func TestEmojiCandidates_EvidenceCappedAtThreeDistinctURLs(t *testing.T) {
	rows := rowsWith(
		"rocket 🚀 one",
		"rocket 🚀 two",
		"rocket 🚀 three",
		"rocket 🚀 four",
		"rocket 🚀 five",
	)

	candidates := EmojiCandidates(rows, nil, 10)

	rocket := findCandidate(candidates, "🚀")
	if rocket == nil {
		t.Fatal("Expected 🚀 candidate")
	}
	if rocket.Score != 5 {
		t.Errorf("Expected 5 hits counted, got %f", rocket.Score)
	}
	if len(rocket.Evidence) != 3 {
		t.Errorf("Expected evidence capped at 3 URLs, got %d", len(rocket.Evidence))
	}
}

func TestEmojiCandidates_TopNBoundsResult(t *testing.T) {
	rows := rowsWith("🚀 🎉 🦄 🍕 🌵 each once")

	candidates := EmojiCandidates(rows, nil, 2)

	if len(candidates) != 2 {
		t.Errorf("Expected 2 candidates with topN=2, got %d", len(candidates))
	}
}
