package facility

import (
	"fmt"
	"math"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

const (
	keyScale = 1e6
	// keyEpsilon absorbs binary representation noise such as
	// 37.123456*1e6 == 37123455.999999996.
	keyEpsilon = 1e-6
)

// Cluster groups facilities that share one quantized coordinate.
type Cluster struct {
	ID              string                  `json:"id"`
	Position        spatial.Point           `json:"position"`
	Facilities      []Facility              `json:"facilities"`
	CategoryCounts  map[search.Category]int `json:"categoryCounts"`
	Count           int                     `json:"count"`
	PrimaryCategory search.Category         `json:"primaryCategory"`
}

// ClusterResult splits a facility set into clusters and singletons.
type ClusterResult struct {
	Clusters         []Cluster  `json:"clusters"`
	SingleFacilities []Facility `json:"singleFacilities"`
}

// PositionKey quantizes each axis to six decimals, truncating toward zero,
// so only effectively coincident points share a key. Truncation is not
// rounding: 127.1234559 keys as 127.123455 and stays apart from 127.123456,
// and 37.1234556 and 37.1234564 get different keys even though both round
// to 37.123456.
func PositionKey(p spatial.Point) string {
	return fmt.Sprintf("%s,%s", formatQuantized(quantize(p.Lat)), formatQuantized(quantize(p.Lng)))
}

func quantize(v float64) int64 {
	scaled := v * keyScale
	if scaled >= 0 {
		return int64(math.Floor(scaled + keyEpsilon))
	}
	return int64(math.Ceil(scaled - keyEpsilon))
}

func formatQuantized(q int64) string {
	sign := ""
	if q < 0 {
		sign = "-"
		q = -q
	}
	return fmt.Sprintf("%s%d.%06d", sign, q/int64(keyScale), q%int64(keyScale))
}

// ClusterFacilities recomputes the grouping from scratch. Groups keep the
// order in which their first member appears in the input.
func ClusterFacilities(facilities []Facility) ClusterResult {
	order := make([]string, 0, len(facilities))
	groups := make(map[string][]Facility, len(facilities))
	for _, f := range facilities {
		key := PositionKey(f.Position)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	result := ClusterResult{Clusters: []Cluster{}, SingleFacilities: []Facility{}}
	for _, key := range order {
		members := groups[key]
		if len(members) == 1 {
			result.SingleFacilities = append(result.SingleFacilities, members[0])
			continue
		}
		counts := make(map[search.Category]int)
		for _, m := range members {
			counts[m.Category]++
		}
		result.Clusters = append(result.Clusters, Cluster{
			ID:              "cluster-" + key,
			Position:        members[0].Position,
			Facilities:      members,
			CategoryCounts:  counts,
			Count:           len(members),
			PrimaryCategory: primaryCategory(counts),
		})
	}
	return result
}

// primaryCategory picks the most frequent category; ties go to the
// alphabetically smallest name.
func primaryCategory(counts map[search.Category]int) search.Category {
	var (
		best      search.Category
		bestCount int
	)
	for cat, n := range counts {
		if n > bestCount || (n == bestCount && cat < best) {
			best, bestCount = cat, n
		}
	}
	return best
}
