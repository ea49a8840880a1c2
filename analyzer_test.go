package bm25s

import (
	"errors"
	"reflect"
	"testing"
)

func TestAnalyzer_Tokenize(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"pipeline", "The Quick Brown Foxes!", []string{"quick", "brown", "fox"}},
		{"punctuation only", "!!! ... ???", []string{}},
		{"empty", "", []string{}},
		{"stopwords only", "the and of", []string{}},
		{"single letters dropped", "a b c cat", []string{"cat"}},
		{"numbers kept", "version 42", []string{"version", "42"}},
		{"stemming", "running runs", []string{"run", "run"}},
		{"repeats kept", "cat cat", []string{"cat", "cat"}},
		{"nfkc folds ligatures", "ﬁsh", []string{"fish"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := analyzer.Tokenize(tt.text)
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", tt.text, err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnalyzer_ConfigToggles(t *testing.T) {
	analyzer := NewAnalyzer(AnalyzerConfig{
		MinTokenLength:  1,
		EnableStemming:  false,
		EnableStopwords: false,
	})

	got, err := analyzer.Tokenize("The cats ran")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	want := []string{"the", "cats", "ran"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %q, want %q", got, want)
	}
}

func TestAnalyzer_Deterministic(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())
	text := "Deep learning and machine learning, again and again."

	first, _ := analyzer.Tokenize(text)
	for i := 0; i < 10; i++ {
		again, _ := analyzer.Tokenize(text)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: %q != %q", i, again, first)
		}
	}
}

func TestAnalyzer_InvalidUTF8(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())

	_, err := analyzer.Tokenize("ok \xc3\x28 broken")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Tokenize() error = %v, want ErrInvalidInput", err)
	}
}

func TestFieldsTokenizer(t *testing.T) {
	got, err := FieldsTokenizer.Tokenize("  The CAT\tsat\n a ")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	want := []string{"the", "cat", "sat", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %q, want %q", got, want)
	}

	if _, err := FieldsTokenizer.Tokenize("\xff"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Tokenize(invalid) error = %v, want ErrInvalidInput", err)
	}
}

func TestTokenizerFunc(t *testing.T) {
	tok := TokenizerFunc(func(text string) ([]string, error) {
		return []string{text}, nil
	})

	got, err := tok.Tokenize("verbatim")
	if err != nil || !reflect.DeepEqual(got, []string{"verbatim"}) {
		t.Errorf("Tokenize() = %q, %v", got, err)
	}
}

func BenchmarkAnalyzer_Tokenize(b *testing.B) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())
	text := "The quick brown fox jumps over the lazy dog while the cats are sleeping."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := analyzer.Tokenize(text); err != nil {
			b.Fatal(err)
		}
	}
}
