package features

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"lowercase", "Spicy PIZZA", []string{"spicy", "pizza"}},
		{"punctuation splits", "wood-fired, thin-crust!", []string{"wood", "fired", "thin", "crust"}},
		{"single runes dropped", "a b cd e", []string{"cd"}},
		{"digits kept", "open 24 hours", []string{"open", "24", "hours"}},
		{"underscore is a word rune", "gluten_free menu", []string{"gluten_free", "menu"}},
		{"unicode letters", "Crème brûlée", []string{"crème", "brûlée"}},
		{"dotted capital i splits", "İstanbul kebab", []string{"stanbul", "kebab"}},
		{"dotted capital i ends word", "Aİb", []string{"ai"}},
		{"final sigma", "ΟΔΟΣ ΣΟΥΒΛΑΚΙ", []string{"οδος", "σουβλακι"}},
		{"sigma pair", "ΣΣ", []string{"σς"}},
	}

	tok := NewTokenizer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizeStopwords(t *testing.T) {
	tok := NewTokenizer([]string{"The", "and"})
	got := tok.Tokenize("the noodles and THE dumplings")
	want := []string{"noodles", "dumplings"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTermsBigrams(t *testing.T) {
	tok := NewTokenizer(nil)
	tok.SetNGramRange(1, 2)

	got := tok.Terms("quick street food")
	want := []string{"quick", "street", "food", "quick street", "street food"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTermsOnlyBigrams(t *testing.T) {
	tok := NewTokenizer(nil)
	tok.SetNGramRange(2, 2)

	got := tok.Terms("quick street food")
	want := []string{"quick street", "street food"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTermsShorterThanRange(t *testing.T) {
	tok := NewTokenizer(nil)
	tok.SetNGramRange(1, 3)

	got := tok.Terms("ramen")
	if !reflect.DeepEqual(got, []string{"ramen"}) {
		t.Errorf("expected [ramen], got %v", got)
	}
}

func TestSetNGramRangeClamps(t *testing.T) {
	tok := NewTokenizer(nil)
	tok.SetNGramRange(0, -1)
	if tok.minN != 1 || tok.maxN != 1 {
		t.Errorf("expected [1,1], got [%d,%d]", tok.minN, tok.maxN)
	}
}
