package migration

import "testing"

func TestBackoffDelay(t *testing.T) {
	cases := []struct {
		attempts int
		want     int64 // seconds
	}{
		{1, 5},
		{2, 10},
		{5, 25},
		{9, 25}, // capped at maxReconnectDelay, multiplier clamped to 5
	}

	for _, tc := range cases {
		got := backoffDelay(tc.attempts)
		if got.Seconds() != float64(tc.want) {
			t.Errorf("backoffDelay(%d) = %v, want %ds", tc.attempts, got, tc.want)
		}
	}
}
