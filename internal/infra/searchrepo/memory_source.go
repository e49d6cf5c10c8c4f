package searchrepo

import (
	"context"
	"sync"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
)

// MemorySource serves a fixed item set, by default the built-in seed.
type MemorySource struct {
	mu    sync.RWMutex
	items []search.Item
}

// NewMemorySource constructs a source; nil items selects the seed data.
func NewMemorySource(items []search.Item) *MemorySource {
	if items == nil {
		items = SeedItems()
	}
	return &MemorySource{items: items}
}

// LoadItems returns a copy of the configured items.
func (s *MemorySource) LoadItems(_ context.Context) ([]search.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]search.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Replace swaps the item set served on the next load.
func (s *MemorySource) Replace(items []search.Item) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func refID(v int64) *int64 {
	return &v
}

// SeedItems is a small representative catalogue used when no database is
// configured.
func SeedItems() []search.Item {
	return []search.Item{
		{ID: "subway-0222", Name: "강남역", Address: "서울 강남구 강남대로 396", Aliases: "강남,Gangnam", Category: search.CategorySubway, RefTable: "subway_stations", RefID: refID(222)},
		{ID: "subway-0133", Name: "서울역", Address: "서울 중구 한강대로 405", Aliases: "Seoul Station", Category: search.CategorySubway, RefTable: "subway_stations", RefID: refID(133)},
		{ID: "subway-0132", Name: "시청역", Address: "서울 중구 세종대로 지하101", Category: search.CategorySubway, RefTable: "subway_stations", RefID: refID(132)},
		{ID: "subway-0239", Name: "홍대입구역", Address: "서울 마포구 양화로 지하160", Aliases: "홍대,Hongik Univ.", Category: search.CategorySubway, RefTable: "subway_stations", RefID: refID(239)},
		{ID: "subway-0216", Name: "잠실역", Address: "서울 송파구 올림픽로 지하265", Category: search.CategorySubway, RefTable: "subway_stations", RefID: refID(216)},
		{ID: "bike-2301", Name: "강남역 10번출구 앞", Address: "서울 강남구 강남대로 지하396", Remark: "따릉이 대여소", Category: search.CategoryBike, RefTable: "bike_stations", RefID: refID(2301)},
		{ID: "bike-0102", Name: "시청역 5번출구", Address: "서울 중구 세종대로 110", Remark: "따릉이 대여소", Category: search.CategoryBike, RefTable: "bike_stations", RefID: refID(102)},
		{ID: "library-1", Name: "서울도서관", Address: "서울 중구 세종대로 110", Remark: "시민청 옆", Category: search.CategoryLibrary, RefTable: "libraries", RefID: refID(1)},
		{ID: "library-2", Name: "국립중앙도서관", Address: "서울 서초구 반포대로 201", Category: search.CategoryLibrary, RefTable: "libraries", RefID: refID(2)},
		{ID: "library-3", Name: "정독도서관", Address: "서울 종로구 북촌로5길 48", Category: search.CategoryLibrary, RefTable: "libraries", RefID: refID(3)},
		{ID: "library-4", Name: "강남구립논현도서관", Address: "서울 강남구 학동로43길 17", Category: search.CategoryLibrary, RefTable: "libraries", RefID: refID(4)},
		{ID: "park-1", Name: "서울숲", Address: "서울 성동구 뚝섬로 273", Aliases: "서울숲공원", Category: search.CategoryPark, RefTable: "parks", RefID: refID(1)},
		{ID: "park-2", Name: "남산공원", Address: "서울 중구 삼일대로 231", Aliases: "남산,N서울타워", Category: search.CategoryPark, RefTable: "parks", RefID: refID(2)},
		{ID: "park-3", Name: "여의도공원", Address: "서울 영등포구 여의공원로 68", Category: search.CategoryPark, RefTable: "parks", RefID: refID(3)},
		{ID: "park-4", Name: "올림픽공원", Address: "서울 송파구 올림픽로 424", Category: search.CategoryPark, RefTable: "parks", RefID: refID(4)},
		{ID: "event-1", Name: "서울재즈페스티벌", Address: "서울 송파구 올림픽로 424", Remark: "올림픽공원", Category: search.CategoryCulturalEvent, RefTable: "cultural_events", RefID: refID(1)},
		{ID: "event-2", Name: "서울빛초롱축제", Address: "서울 종로구 청계천로", Remark: "청계천 일대", Category: search.CategoryCulturalEvent, RefTable: "cultural_events", RefID: refID(2)},
		{ID: "reservation-1", Name: "세종문화회관 대극장 공연", Address: "서울 종로구 세종대로 175", Category: search.CategoryCulturalReservation, RefTable: "cultural_reservations", RefID: refID(1)},
		{ID: "reservation-2", Name: "북서울꿈의숲 아트센터", Address: "서울 강북구 월계로 173", Category: search.CategoryCulturalReservation, RefTable: "cultural_reservations", RefID: refID(2)},
		{ID: "cooling-1", Name: "역삼1동 주민센터 무더위쉼터", Address: "서울 강남구 역삼로 179", Category: search.CategoryCoolingCenter, RefTable: "cooling_centers", RefID: refID(1)},
		{ID: "cooling-2", Name: "소공동 주민센터 무더위쉼터", Address: "서울 중구 세종대로 110", Category: search.CategoryCoolingCenter, RefTable: "cooling_centers", RefID: refID(2)},
		{ID: "restaurant-1", Name: "을지면옥", Address: "서울 중구 충무로14길 2-1", Remark: "평양냉면", Category: search.CategoryRestaurant, RefTable: "restaurants", RefID: refID(1)},
		{ID: "restaurant-2", Name: "강남 교자", Address: "서울 강남구 강남대로102길 30", Remark: "칼국수,만두", Category: search.CategoryRestaurant, RefTable: "restaurants", RefID: refID(2)},
	}
}

var _ search.ItemSource = (*MemorySource)(nil)
