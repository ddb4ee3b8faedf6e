package stringutil

import "testing"

func TestIsNumeric(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Valid digits", "123456", true},
		{"Program code", "42", true},
		{"Empty string", "", false},
		{"Contains letter", "12a", false},
		{"Contains space", "1 2", false},
		{"Negative sign", "-3", false},
		{"Decimal point", "2.5", false},
		{"Non-ASCII digit", "٣", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsNumeric(tt.input); got != tt.want {
				t.Errorf("IsNumeric(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"shorter than limit", "hola", 10, "hola"},
		{"exact length", "hola", 4, "hola"},
		{"ascii cut", "derecho", 3, "der"},
		{"multi-byte kept whole", "programación", 9, "programac"},
		{"cut after accent", "programación", 10, "programaci"},
		{"cut includes accent", "programación", 11, "programació"},
		{"zero", "hola", 0, ""},
		{"negative", "hola", -1, ""},
		{"empty", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.s, tt.n); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
		})
	}
}
