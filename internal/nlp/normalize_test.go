package nlp

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  multiple   spaces\tand\nnewlines ", "multiple space and newline"},
		{"What's 2+2?", "what s"},
		{"ORDERING pizzas", "order pizza"},
		{"studies", "study"},
		{"walked", "walk"},
		{"class address status", "class address status"},
		{"", ""},
		{"123 456", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	in := "Booking flights to Jakarta!"
	first := Normalize(in)
	for i := 0; i < 5; i++ {
		if got := Normalize(in); got != first {
			t.Fatalf("Normalize not deterministic: want=%q got=%q", first, got)
		}
	}
}
