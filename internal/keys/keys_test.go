package keys

import "testing"

func TestRoundKeyStable(t *testing.T) {
	if RoundKey(7, 3) != "round:7:3" {
		t.Fatalf("unexpected round key %q", RoundKey(7, 3))
	}
	if RoundKey(7, 3) == RoundKey(7, 4) || RoundKey(7, 3) == RoundKey(8, 3) {
		t.Fatalf("round keys must be unique per match and round")
	}
	if MatchKey(7) != "match:7" {
		t.Fatalf("unexpected match key %q", MatchKey(7))
	}
}

func TestShortAddress(t *testing.T) {
	got := ShortAddress("kaspa:qr5ez3c8xfzfz7ue4u6cvvrvq2h9nlxp3jkl0aue")
	if got != "kaspa:qr5e…0aue" {
		t.Fatalf("unexpected abbreviation %q", got)
	}
	// Short payloads and odd strings pass through untouched.
	if ShortAddress("bot:12345678") != "bot:12345678" {
		t.Fatalf("short payload should pass through")
	}
	if ShortAddress("noseparator") != "noseparator" {
		t.Fatalf("string without separator should pass through")
	}
}
