package assistant

import (
	"slices"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"accents removed", "programación", "programacion"},
		{"uppercase folded", "  MISIÓN Y VISIÓN ", "mision y vision"},
		{"enie", "Año de España", "ano de espana"},
		{"inverted punctuation dropped", "¿Qué hora es?", "que hora es?"},
		{"emoji dropped", "hola 👋", "hola"},
		{"empty", "", ""},
		{"only spaces", "   \t\n", ""},
		{"invalid utf8", "\xff\xfe", ""},
		{"digits kept", "Código 42", "codigo 42"},
		{"control characters", "\tx\x00y ", "x y"},
		{"newlines", "hola\r\nmundo\x7f", "hola  mundo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"programación", "Ingeniería de Sistemas", "¿Cuál es la MISIÓN?",
		"ñandú", "Ünïcödé", "😀 mixed ✓ text", "", "ya normalizado", "\xffbroken",
		"\tx\x00y\n",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()
	got := tokens("hola, cual es la mision? codigo-2")
	want := []string{"hola", "cual", "es", "la", "mision", "codigo", "2"}
	if !slices.Equal(got, want) {
		t.Errorf("tokens() = %v, want %v", got, want)
	}

	got = tokens("codigo2 3x4 covid19a")
	want = []string{"codigo", "2", "3", "x", "4", "covid", "19", "a"}
	if !slices.Equal(got, want) {
		t.Errorf("tokens() = %v, want %v", got, want)
	}
}

func TestTokenSet_Has(t *testing.T) {
	t.Parallel()
	ts := newTokenSet("buenas tardes, que puedes hacer")

	tests := []struct {
		keywords []string
		want     bool
	}{
		{[]string{"buenas"}, true},
		{[]string{"buenas tardes"}, true},
		{[]string{"que puedes hacer"}, true},
		{[]string{"tarde"}, false},
		{[]string{"puedes que"}, false},
		{[]string{"hola", "hacer"}, true},
		{nil, false},
	}
	for _, tt := range tests {
		if got := ts.has(tt.keywords...); got != tt.want {
			t.Errorf("has(%v) = %v, want %v", tt.keywords, got, tt.want)
		}
	}
}
