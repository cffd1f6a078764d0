package repositories

import "testing"

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, defaultMessageLimit},
		{-5, defaultMessageLimit},
		{1, 1},
		{defaultMessageLimit, defaultMessageLimit},
		{maxMessageLimit, maxMessageLimit},
		{maxMessageLimit + 1, maxMessageLimit},
		{1 << 30, maxMessageLimit},
	}
	for _, tc := range cases {
		if got := clampLimit(tc.in); got != tc.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
