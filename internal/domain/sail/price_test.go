package sail

import (
	"testing"
	"time"
)

func TestPrice_MatchesReferenceValues(t *testing.T) {
	cases := []struct {
		amplitude, midline, seed int
		nowMs                    int64
		want                     int
	}{
		{10, 50, 1, 0, 53},
		{30, 40, 42, 1_700_000_000_000, 36},
		{100, 20, 99, 86_400_000, 24},
	}
	for _, tc := range cases {
		got := Price(tc.amplitude, tc.midline, tc.seed, time.UnixMilli(tc.nowMs))
		if got != tc.want {
			t.Fatalf("Price(%d,%d,%d,%d) = %d, want %d", tc.amplitude, tc.midline, tc.seed, tc.nowMs, got, tc.want)
		}
	}
}

func TestPrice_AlwaysWithinBounds(t *testing.T) {
	for seed := 0; seed < 200; seed++ {
		for _, amp := range []int{0, 1, 15, 400} {
			for _, mid := range []int{1, 2, 30} {
				for minute := int64(0); minute < 50; minute += 7 {
					p := Price(amp, mid, seed, time.UnixMilli(minute*60000))
					if p < 1 || p > mid+amp {
						t.Fatalf("Price(%d,%d,%d) at minute %d = %d out of [1,%d]", amp, mid, seed, minute, p, mid+amp)
					}
				}
			}
		}
	}
}

func TestPrice_StableWithinMinuteBucket(t *testing.T) {
	a := time.UnixMilli(60_000)
	b := time.UnixMilli(60_000 + 20_000)
	if MinuteBucket(a) != MinuteBucket(b) {
		t.Fatalf("expected same bucket, got %d and %d", MinuteBucket(a), MinuteBucket(b))
	}
	if Price(25, 60, 7, a) != Price(25, 60, 7, b) {
		t.Fatalf("expected identical prices inside one bucket")
	}
}

func TestMinuteBucket_RoundsHalfUp(t *testing.T) {
	if got := MinuteBucket(time.UnixMilli(29_999)); got != 0 {
		t.Fatalf("expected bucket 0, got %d", got)
	}
	if got := MinuteBucket(time.UnixMilli(30_000)); got != 1 {
		t.Fatalf("expected bucket 1, got %d", got)
	}
}
