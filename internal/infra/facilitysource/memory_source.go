package facilitysource

import (
	"context"

	"github.com/seoulfit/seoulfit-api/internal/domain/facility"
	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

// MemorySource serves a fixed facility list for one category. The facility
// service applies the radius filter.
type MemorySource struct {
	category search.Category
	items    []facility.Facility
}

// NewMemorySource constructs a source over items.
func NewMemorySource(category search.Category, items []facility.Facility) *MemorySource {
	return &MemorySource{category: category, items: items}
}

// NewSeedSources returns memory sources for every category in the seed set.
func NewSeedSources() []facility.Source {
	grouped := make(map[search.Category][]facility.Facility)
	for _, f := range SeedFacilities() {
		grouped[f.Category] = append(grouped[f.Category], f)
	}
	out := make([]facility.Source, 0, len(grouped))
	for _, cat := range search.Categories() {
		out = append(out, NewMemorySource(cat, grouped[cat]))
	}
	return out
}

func (s *MemorySource) Category() search.Category { return s.category }

func (s *MemorySource) Fetch(ctx context.Context, _ facility.NearbyQuery) ([]facility.Facility, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]facility.Facility, len(s.items))
	copy(out, s.items)
	return out, nil
}

func at(lat, lng float64) spatial.Point {
	return spatial.Point{Lat: lat, Lng: lng}
}

// SeedFacilities is a small set of places around City Hall and Gangnam used
// when no backend is configured. The two cooling centers inside 서울도서관
// share a coordinate with it so the map shows a cluster there.
func SeedFacilities() []facility.Facility {
	return []facility.Facility{
		{ID: "subway-0132", Name: "시청역", Category: search.CategorySubway, Position: at(37.565715, 126.977088), Address: "서울 중구 세종대로 지하101"},
		{ID: "subway-0222", Name: "강남역", Category: search.CategorySubway, Position: at(37.497942, 127.027621), Address: "서울 강남구 강남대로 396"},
		{ID: "bike-0102", Name: "시청역 5번출구", Category: search.CategoryBike, Position: at(37.565298, 126.977948)},
		{ID: "bike-2301", Name: "강남역 10번출구 앞", Category: search.CategoryBike, Position: at(37.498200, 127.027400)},
		{ID: "library-1", Name: "서울도서관", Category: search.CategoryLibrary, Position: at(37.566295, 126.977945), Address: "서울 중구 세종대로 110", OperatingHours: "09:00-21:00"},
		{ID: "park-2", Name: "남산공원", Category: search.CategoryPark, Position: at(37.550925, 126.990945)},
		{ID: "park-5", Name: "서울광장", Category: search.CategoryPark, Position: at(37.565804, 126.977600)},
		{ID: "event-2", Name: "서울빛초롱축제", Category: search.CategoryCulturalEvent, Position: at(37.568900, 126.978900)},
		{ID: "reservation-1", Name: "세종문화회관 대극장 공연", Category: search.CategoryCulturalReservation, Position: at(37.572600, 126.975700)},
		{ID: "cooling-2", Name: "소공동 주민센터 무더위쉼터", Category: search.CategoryCoolingCenter, Position: at(37.566295, 126.977945), OperatingHours: "11:00-18:00"},
		{ID: "cooling-3", Name: "서울도서관 무더위쉼터", Category: search.CategoryCoolingCenter, Position: at(37.566295, 126.977945), OperatingHours: "09:00-18:00"},
		{ID: "cooling-1", Name: "역삼1동 주민센터 무더위쉼터", Category: search.CategoryCoolingCenter, Position: at(37.495800, 127.033000)},
		{ID: "restaurant-1", Name: "을지면옥", Category: search.CategoryRestaurant, Position: at(37.566700, 126.991700)},
	}
}

var _ facility.Source = (*MemorySource)(nil)
