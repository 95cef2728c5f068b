package volprofile

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// VolumeHistogram maps a string-encoded price level to the traded volume there.
type VolumeHistogram map[string]float64

// PriceLevel 为直方图中的单个价位。
type PriceLevel struct {
	Key    string
	Price  decimal.Decimal
	Volume float64
}

// Levels returns the histogram sorted from the highest price to the lowest.
// Keys are compared as exact decimals so "101.5" and "101.50" land on the
// same price instead of being ordered lexically.
func (h VolumeHistogram) Levels() ([]PriceLevel, error) {
	levels := make([]PriceLevel, 0, len(h))
	for key, vol := range h {
		price, err := decimal.NewFromString(key)
		if err != nil {
			return nil, fmt.Errorf("volume_histogram key %q: %w", key, err)
		}
		levels = append(levels, PriceLevel{Key: key, Price: price, Volume: vol})
	}
	sort.SliceStable(levels, func(i, j int) bool {
		if c := levels[i].Price.Cmp(levels[j].Price); c != 0 {
			return c > 0
		}
		return levels[i].Key < levels[j].Key
	})
	return levels, nil
}

// TotalVolume sums every level.
func (h VolumeHistogram) TotalVolume() float64 {
	var sum float64
	for _, v := range h {
		sum += v
	}
	return sum
}

func cloneHistogram(h VolumeHistogram) VolumeHistogram {
	if h == nil {
		return nil
	}
	out := make(VolumeHistogram, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
