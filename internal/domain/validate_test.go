package domain

import "testing"

func TestValidMint(t *testing.T) {
	cases := []struct {
		name string
		mint string
		want bool
	}{
		{"valid pump mint", "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", true},
		{"too short", "abc", false},
		{"contains invalid base58 char", "0OIl00000000000000000000000000000", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidMint(tc.mint); got != tc.want {
				t.Errorf("ValidMint(%q) = %v, want %v", tc.mint, got, tc.want)
			}
		})
	}
}

func TestModeIsValid(t *testing.T) {
	if !ModeFast.IsValid() || !ModeFull.IsValid() {
		t.Fatal("expected fast and full to be valid modes")
	}
	if Mode("bogus").IsValid() {
		t.Fatal("expected unrecognized mode to be invalid")
	}
}
