package boundary

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Kandhamal SC", "Kandhamal"},
		{"Kandhamal (SC)", "Kandhamal"},
		{"Kandhamal", "Kandhamal"},
		{"  Kandhamal  ", "Kandhamal"},
		{"Baramulla ST", "Baramulla"},
		{"Rampur (OBC)", "Rampur"},
		{"Central GEN", "Central"},
		{"Salt Lake (ST) ", "Salt Lake"},
		// Only one marker is stripped.
		{"Odd SC (ST)", "Odd SC"},
		{"Foo SC ST", "Foo SC"},
		{"Foo (SC) (ST)", "Foo (SC)"},
		// A marker needs whitespace before it.
		{"Kandhamal(SC)", "Kandhamal(SC)"},
		{"Rampur(OBC) ", "Rampur(OBC)"},
		// Lowercase words and embedded markers are not reservation suffixes.
		{"Gangtok sc", "Gangtok sc"},
		{"SCindia", "SCindia"},
		{"Sector ST Road", "Sector ST Road"},
		{"ST", "ST"},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	for _, in := range []string{"Kandhamal SC", "Kandhamal (SC)", "Kandhamal", "Bengaluru South", "Rampur (OBC)"} {
		once := NormalizeName(in)
		if twice := NormalizeName(once); twice != once {
			t.Errorf("NormalizeName not idempotent for %q: %q then %q", in, once, twice)
		}
	}
	if NormalizeName("Kandhamal SC") != NormalizeName("Kandhamal (SC)") {
		t.Error("suffix forms normalize differently")
	}
}

func TestNormalizeName_TwoMarkersNeedTwoPasses(t *testing.T) {
	once := NormalizeName("Foo SC ST")
	if once != "Foo SC" {
		t.Fatalf("first pass = %q, want %q", once, "Foo SC")
	}
	if twice := NormalizeName(once); twice != "Foo" {
		t.Errorf("second pass = %q, want %q", twice, "Foo")
	}
}
