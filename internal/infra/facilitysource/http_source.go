package facilitysource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seoulfit/seoulfit-api/internal/domain/facility"
	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

// paths maps categories onto the backend listing endpoints.
var paths = map[search.Category]string{
	search.CategorySubway:              "/api/subway-stations/nearby",
	search.CategoryBike:                "/api/bike-stations/nearby",
	search.CategoryLibrary:             "/api/libraries/nearby",
	search.CategoryPark:                "/api/parks/nearby",
	search.CategoryCulturalEvent:       "/api/cultural-events/nearby",
	search.CategoryCulturalReservation: "/api/cultural-reservations/nearby",
	search.CategoryCoolingCenter:       "/api/cooling-centers/nearby",
	search.CategoryRestaurant:          "/api/restaurants/nearby",
}

// HTTPSource fetches one category from the facility backend.
type HTTPSource struct {
	category   search.Category
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSource builds a source for category against baseURL.
func NewHTTPSource(category search.Category, baseURL string, httpClient *http.Client) *HTTPSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{
		category:   category,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
	}
}

// NewHTTPSources builds one source per known category.
func NewHTTPSources(baseURL string, httpClient *http.Client) []facility.Source {
	out := make([]facility.Source, 0, len(paths))
	for _, cat := range search.Categories() {
		out = append(out, NewHTTPSource(cat, baseURL, httpClient))
	}
	return out
}

func (s *HTTPSource) Category() search.Category { return s.category }

// Fetch calls the backend and normalizes whatever list shape it returns.
func (s *HTTPSource) Fetch(ctx context.Context, q facility.NearbyQuery) ([]facility.Facility, error) {
	path, ok := paths[s.category]
	if !ok {
		return nil, fmt.Errorf("no endpoint for category %s", s.category)
	}
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(q.Center.Lat, 'f', 6, 64))
	params.Set("lng", strconv.FormatFloat(q.Center.Lng, 'f', 6, 64))
	params.Set("radius", strconv.FormatFloat(q.RadiusKm, 'f', 3, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", s.category, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", s.category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%s request error: status=%d body=%s", s.category, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", s.category, err)
	}
	return normalizeResponse(body, s.category)
}

// normalizeResponse accepts a bare array or an object wrapping the list
// under data/items/facilities/content.
func normalizeResponse(body []byte, category search.Category) ([]facility.Facility, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", category, err)
	}
	list, ok := unwrapList(raw)
	if !ok {
		return nil, fmt.Errorf("unexpected %s response shape", category)
	}
	out := make([]facility.Facility, 0, len(list))
	for _, entry := range list {
		record, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		f, ok := toFacility(record, category)
		if !ok {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func unwrapList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case map[string]any:
		for _, key := range []string{"data", "items", "facilities", "content", "result"} {
			if inner, ok := v[key]; ok {
				if list, ok := unwrapList(inner); ok {
					return list, true
				}
			}
		}
	}
	return nil, false
}

func toFacility(record map[string]any, category search.Category) (facility.Facility, bool) {
	id := firstString(record, "id", "facilityId", "stationId")
	name := firstString(record, "name", "title", "stationName", "facilityName")
	lat, okLat := firstNumber(record, "lat", "latitude", "y")
	lng, okLng := firstNumber(record, "lng", "lon", "longitude", "x")
	if id == "" || name == "" || !okLat || !okLng {
		return facility.Facility{}, false
	}
	f := facility.Facility{
		ID:              string(category) + "-" + id,
		Name:            name,
		Category:        category,
		Position:        spatial.Point{Lat: lat, Lng: lng},
		Address:         firstString(record, "address", "addr", "roadAddress"),
		Phone:           firstString(record, "phone", "tel", "phoneNumber"),
		Website:         firstString(record, "website", "homepage", "url"),
		OperatingHours:  firstString(record, "operatingHours", "hours", "openTime"),
		Description:     firstString(record, "description", "remark"),
		CongestionLevel: facility.ParseCongestion(firstString(record, "congestionLevel", "congestion")),
	}
	if v, ok := record["isReservable"].(bool); ok {
		f.IsReservable = &v
	}
	return f, true
}

func firstString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := record[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func firstNumber(record map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := record[key].(type) {
		case float64:
			return v, true
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

var _ facility.Source = (*HTTPSource)(nil)
