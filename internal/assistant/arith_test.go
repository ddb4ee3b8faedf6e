package assistant

import (
	"math"
	"strings"
	"testing"
)

func TestExtractArithmetic(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"spanish plus", "cuanto es 4 mas 5", "Resultado: 9", true},
		{"accented plus", "¿Cuánto es 4 más 5?", "Resultado: 9", true},
		{"minus", "7 menos 10", "Resultado: -3", true},
		{"times word", "6 por 7", "Resultado: 42", true},
		{"times x", "3x4", "Resultado: 12", true},
		{"multiplicado por", "2 multiplicado por 8", "Resultado: 16", true},
		{"dividido por", "10 dividido por 4", "Resultado: 2.5", true},
		{"entre", "12 entre 4", "Resultado: 3", true},
		{"modulo", "17 modulo 5", "Resultado: 2", true},
		{"elevado a", "2 elevado a 10", "Resultado: 1024", true},
		{"symbols with parens", "calcula (2+3)*4 por favor", "Resultado: 20", true},
		{"double star power", "2**3", "Resultado: 8", true},
		{"decimals rounded", "1/3", "Resultado: 0.333333", true},
		{"division by zero", "10 dividido 0", "", false},
		{"modulo by zero", "5 % 0", "", false},
		{"no operator", "codigo 2", "", false},
		{"no digits", "hola mas adios", "", false},
		{"plain text", "hola", "", false},
		{"empty", "", "", false},
		{"unbalanced", "(2+3", "", false},
		{"huge power", "cuanto es 10^303", "Resultado: 1e+303", true},
		{"huge power in words", "2 elevado a 1000", "Resultado: 1.0715086071862673e+301", true},
		{"overflow", "10^400", "", false},
		{"number glued to letter", "1e5 mas 2", "", false},
		{"phone number", "mi telefono 300-123-4567", "", false},
		{"date", "nacio el 2024-01-15", "", false},
		{"plain subtraction", "10-3", "Resultado: 7", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractArithmetic(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractArithmetic(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		expr string
		want float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10-4-3", 3},
		{"100/10/5", 2},
		{"-2^2", -4},
		{"2^3^2", 512},
		{"2^-1", 0.5},
		{"--3", 3},
		{"+4", 4},
		{"-7 % 3", 2},
		{"7 % -3", -2},
		{"0.5 + .25", 0.75},
		{" 8 ", 8},
	}
	for _, tt := range tests {
		got, err := Evaluate(tt.expr)
		if err != nil {
			t.Errorf("Evaluate(%q) error: %v", tt.expr, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestEvaluate_Errors(t *testing.T) {
	t.Parallel()
	deep := strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40)
	inputs := []string{
		"", "   ", "1/0", "1%0", "2*(3", "2)", "1 2", "1..2", ".", "abc",
		"__import__('os')", "2^", "*3", "1e5", deep, "10^400",
	}
	for _, in := range inputs {
		if v, err := Evaluate(in); err == nil {
			t.Errorf("Evaluate(%q) = %v, want error", in, v)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		v    float64
		want string
	}{
		{9, "9"},
		{-3, "-3"},
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{2.5, "2.5"},
		{1.0 / 3, "0.333333"},
		{2.0 / 3, "0.666667"},
		{-1e-9, "0"},
		{999999999999999, "999999999999999"},
		{1e15, "1e+15"},
		{-2.5e20, "-2.5e+20"},
		{1e303, "1e+303"},
		{math.MaxFloat64, "1.7976931348623157e+308"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.v); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
