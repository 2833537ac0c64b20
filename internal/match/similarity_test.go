package match

import (
	"testing"
)

func TestScoreText_IdenticalTitles(t *testing.T) {
	s := NewScorer(DefaultWeights())

	title := "Will Bitcoin reach $100k by 2025?"
	got := s.ScoreText(title, title)
	if got < 0.9 {
		t.Errorf("identical titles scored %v, want >= 0.9", got)
	}
}

func TestScoreText_UnrelatedQuestions(t *testing.T) {
	s := NewScorer(DefaultWeights())

	got := s.ScoreText(
		"Will it rain in Paris tomorrow?",
		"Will the Fed cut rates in March?",
	)
	if got >= 0.35 {
		t.Errorf("unrelated questions scored %v, want well below 0.35", got)
	}
}

func TestScoreText_Range(t *testing.T) {
	s := NewScorer(DefaultWeights())

	pairs := [][2]string{
		{"", ""},
		{"bitcoin 2025", ""},
		{"Will Trump win the 2024 election?", "Trump to win 2024 presidential election"},
		{"GDP above 3% in Q4?", "Will US GDP growth exceed 3%?"},
	}
	for _, p := range pairs {
		got := s.ScoreText(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("ScoreText(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}

func TestTokenize_StopWordsAndPunctuation(t *testing.T) {
	got := tokenize("Will the Fed cut rates by March?")
	want := []string{"fed", "cut", "rates", "march"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAnchors(t *testing.T) {
	// Punctuation is stripped before anchor extraction, so "5%" surfaces as
	// the bare number "5".
	set := anchors(tokenize("Will Bitcoin hit 100000 in 2025? 5% chance says the Fed in Dec"))

	for _, want := range []string{"bitcoin", "100000", "2025", "5", "fed", "dec"} {
		if _, ok := set[want]; !ok {
			t.Errorf("anchor %q missing from %v", want, set)
		}
	}
	if _, ok := set["chance"]; ok {
		t.Errorf("non-anchor token %q extracted", "chance")
	}
}
