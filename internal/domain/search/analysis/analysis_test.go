package analysis

import (
	"reflect"
	"testing"
)

func TestStandard(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Pizza Palace", []string{"pizza", "palace"}},
		{"  Joe's   Diner!", []string{"joe", "s", "diner"}},
		{"Café-Bar 24/7", []string{"café", "bar", "24", "7"}},
		{"", []string{}},
		{"---", []string{}},
	}
	for _, tc := range tests {
		got := Standard(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Standard(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLowercase(t *testing.T) {
	if got := Lowercase("Pizza PALACE"); got != "pizza palace" {
		t.Errorf("Lowercase = %q", got)
	}
}
