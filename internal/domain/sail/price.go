package sail

import (
	"math"
	"time"
)

const priceWaves = 4

// MinuteBucket is the time granularity prices move at. Two callers that
// land in the same bucket always see the same price.
func MinuteBucket(now time.Time) int64 {
	return int64(roundHalfUp(float64(now.UnixMilli()) / 60000))
}

// Price is the spot price of a good at now. The result is always within
// [1, midline+amplitude].
func Price(amplitude, midline, seed int, now time.Time) int {
	timeMin := float64(MinuteBucket(now))

	var r [priceWaves]float64
	total := 0.0
	for i := range r {
		r[i] = Random(seed + i)
		total += r[i]
	}

	sum := 0.0
	for i := range r {
		percent := 0.0
		if total > 0 {
			percent = r[i] / total
		}
		val := timeMin * r[i] * percent
		sway := Random(seed + i*10)
		if i%2 == 0 {
			sum += math.Sin(val) * sway
		} else {
			sum += math.Cos(val) * sway
		}
	}

	ceiling := midline + amplitude
	v := int(roundHalfUp(float64(amplitude)*(sum/priceWaves) + float64(midline)))
	if v > ceiling {
		v = ceiling
	}
	if v < 1 {
		v = 1
	}
	return v
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
