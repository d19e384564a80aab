package scorer

import "testing"

func TestPhraseBonusZeroWithSingleTerm(t *testing.T) {
	got := phraseBonus(map[string][]int{"foo": {0, 1, 2}}, DefaultPhraseWindow, DefaultPhraseCapRatio, 10)
	if got != 0 {
		t.Errorf("expected 0 bonus with only one distinct term, got %v", got)
	}
}

func TestPhraseBonusPositiveWhenTermsCluster(t *testing.T) {
	positions := map[string][]int{
		"foo": {5},
		"bar": {7},
	}
	got := phraseBonus(positions, DefaultPhraseWindow, DefaultPhraseCapRatio, 10)
	if got <= 0 {
		t.Errorf("expected positive bonus for clustered terms, got %v", got)
	}
}

func TestPhraseBonusZeroWhenFarApart(t *testing.T) {
	positions := map[string][]int{
		"foo": {0},
		"bar": {1000},
	}
	got := phraseBonus(positions, DefaultPhraseWindow, DefaultPhraseCapRatio, 10)
	if got != 0 {
		t.Errorf("expected 0 bonus for distant terms, got %v", got)
	}
}

func TestPhraseBonusNeverExceedsCap(t *testing.T) {
	positions := map[string][]int{
		"foo": {5},
		"bar": {6},
		"baz": {7},
	}
	base := 100.0
	got := phraseBonus(positions, DefaultPhraseWindow, DefaultPhraseCapRatio, base)
	cap := base * DefaultPhraseCapRatio
	if got > cap {
		t.Errorf("bonus %v exceeds cap %v", got, cap)
	}
}
