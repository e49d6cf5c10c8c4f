package search

// Category classifies a searchable record.
type Category string

const (
	CategorySubway              Category = "subway"
	CategoryBike                Category = "bike"
	CategoryLibrary             Category = "library"
	CategoryPark                Category = "park"
	CategoryCulturalEvent       Category = "cultural_event"
	CategoryCulturalReservation Category = "cultural_reservation"
	CategoryCoolingCenter       Category = "cooling_center"
	CategoryRestaurant          Category = "restaurant"
)

const unknownCategoryPriority = 9

var categoryPriority = map[Category]int{
	CategorySubway:              1,
	CategoryBike:                2,
	CategoryLibrary:             3,
	CategoryPark:                4,
	CategoryCulturalEvent:       5,
	CategoryCulturalReservation: 6,
	CategoryCoolingCenter:       7,
	CategoryRestaurant:          8,
}

// Categories lists every known category in priority order.
func Categories() []Category {
	return []Category{
		CategorySubway,
		CategoryBike,
		CategoryLibrary,
		CategoryPark,
		CategoryCulturalEvent,
		CategoryCulturalReservation,
		CategoryCoolingCenter,
		CategoryRestaurant,
	}
}

// Priority is the tie-break rank used when scores are equal; lower wins.
func (c Category) Priority() int {
	if p, ok := categoryPriority[c]; ok {
		return p
	}
	return unknownCategoryPriority
}

// Known reports whether c is one of the fixed categories.
func (c Category) Known() bool {
	_, ok := categoryPriority[c]
	return ok
}

// Item is a record that can be matched by the search pipeline.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address,omitempty"`
	Remark   string   `json:"remark,omitempty"`
	Aliases  string   `json:"aliases,omitempty"`
	Category Category `json:"category"`
	RefTable string   `json:"ref_table,omitempty"`
	RefID    *int64   `json:"ref_id,omitempty"`
}

// Request is the payload accepted by Service.Search.
type Request struct {
	Query string `json:"query" form:"q"`
	Limit int    `json:"limit" form:"limit"`
}

// Response carries ranked results back to the transport.
type Response struct {
	Query   string `json:"query"`
	Items   []Item `json:"items"`
	Total   int    `json:"total"`
	Indexed int    `json:"indexed"`
}

// Config controls paging of search results.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}
