package seoulapi

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seoulfit/seoulfit-api/internal/domain/citydata"
	"github.com/seoulfit/seoulfit-api/pkg/util"
)

const (
	defaultBaseURL = "http://openapi.seoul.go.kr:8088"
	resultOK       = "INFO-000"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("seoul open data api key not configured")

// Client fetches real-time city data from the Seoul open-data API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        util.Clock
}

// NewClient builds an API client.
func NewClient(baseURL, apiKey string) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: util.NowUTC,
	}
}

// Fetch retrieves weather and congestion for poi. A malformed or non-OK
// JSON answer is retried once in XML.
func (c *Client) Fetch(ctx context.Context, poi citydata.POI) (citydata.Area, error) {
	if c.apiKey == "" {
		return citydata.Area{}, ErrNotConfigured
	}
	city, jsonErr := c.fetch(ctx, "json", poi.Code)
	if jsonErr != nil {
		if ctx.Err() != nil {
			return citydata.Area{}, jsonErr
		}
		var xmlErr error
		city, xmlErr = c.fetch(ctx, "xml", poi.Code)
		if xmlErr != nil {
			return citydata.Area{}, fmt.Errorf("citydata %s: %w (json: %v)", poi.Code, xmlErr, jsonErr)
		}
	}
	area := city.toArea()
	area.FetchedAt = c.now()
	if area.Code == "" {
		area.Code = poi.Code
	}
	return area, nil
}

func (c *Client) fetch(ctx context.Context, format, area string) (rawCity, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/citydata/1/5/%s", c.baseURL, url.PathEscape(c.apiKey), format, url.PathEscape(area))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return rawCity{}, fmt.Errorf("build citydata request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rawCity{}, fmt.Errorf("citydata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return rawCity{}, fmt.Errorf("citydata request error: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rawCity{}, fmt.Errorf("read citydata response: %w", err)
	}
	if format == "xml" {
		return decodeXML(body)
	}
	return decodeJSON(body)
}

type jsonEnvelope struct {
	CityData *rawCity  `json:"CITYDATA"`
	Result   rawResult `json:"RESULT"`
}

type xmlEnvelope struct {
	XMLName  xml.Name  `xml:"SeoulRtd.citydata"`
	Result   rawResult `xml:"RESULT"`
	CityData *rawCity  `xml:"CITYDATA"`
}

type rawResult struct {
	Code    string `json:"RESULT.CODE" xml:"RESULT.CODE"`
	Message string `json:"RESULT.MESSAGE" xml:"RESULT.MESSAGE"`
}

type rawCity struct {
	Name       string          `json:"AREA_NM" xml:"AREA_NM"`
	Code       string          `json:"AREA_CD" xml:"AREA_CD"`
	Population []rawPopulation `json:"LIVE_PPLTN_STTS" xml:"LIVE_PPLTN_STTS>LIVE_PPLTN_STTS"`
	Weather    []rawWeather    `json:"WEATHER_STTS" xml:"WEATHER_STTS>WEATHER_STTS"`
}

type rawPopulation struct {
	Level   flexString `json:"AREA_CONGEST_LVL" xml:"AREA_CONGEST_LVL"`
	Message flexString `json:"AREA_CONGEST_MSG" xml:"AREA_CONGEST_MSG"`
	Min     flexString `json:"AREA_PPLTN_MIN" xml:"AREA_PPLTN_MIN"`
	Max     flexString `json:"AREA_PPLTN_MAX" xml:"AREA_PPLTN_MAX"`
	Time    flexString `json:"PPLTN_TIME" xml:"PPLTN_TIME"`
}

type rawWeather struct {
	Time          flexString `json:"WEATHER_TIME" xml:"WEATHER_TIME"`
	Temp          flexString `json:"TEMP" xml:"TEMP"`
	SensibleTemp  flexString `json:"SENSIBLE_TEMP" xml:"SENSIBLE_TEMP"`
	MaxTemp       flexString `json:"MAX_TEMP" xml:"MAX_TEMP"`
	MinTemp       flexString `json:"MIN_TEMP" xml:"MIN_TEMP"`
	Humidity      flexString `json:"HUMIDITY" xml:"HUMIDITY"`
	Precipitation flexString `json:"PRECIPITATION" xml:"PRECIPITATION"`
	PcpMsg        flexString `json:"PCP_MSG" xml:"PCP_MSG"`
	PM10          flexString `json:"PM10" xml:"PM10"`
	PM25          flexString `json:"PM25" xml:"PM25"`
	UVIndex       flexString `json:"UV_INDEX" xml:"UV_INDEX"`
}

// flexString takes JSON strings, numbers and null alike.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

func decodeJSON(body []byte) (rawCity, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return rawCity{}, fmt.Errorf("decode citydata json: %w", err)
	}
	return checkResult(env.Result, env.CityData)
}

func decodeXML(body []byte) (rawCity, error) {
	var env xmlEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return rawCity{}, fmt.Errorf("decode citydata xml: %w", err)
	}
	return checkResult(env.Result, env.CityData)
}

func checkResult(result rawResult, city *rawCity) (rawCity, error) {
	if result.Code != "" && result.Code != resultOK {
		return rawCity{}, fmt.Errorf("citydata api error: %s %s", result.Code, result.Message)
	}
	if city == nil {
		return rawCity{}, errors.New("citydata response has no CITYDATA block")
	}
	return *city, nil
}

func (c rawCity) toArea() citydata.Area {
	area := citydata.Area{Code: strings.TrimSpace(c.Code), Name: strings.TrimSpace(c.Name)}
	if len(c.Weather) > 0 {
		w := c.Weather[0]
		area.Weather = &citydata.Weather{
			Temperature:          parseFloat(w.Temp),
			SensibleTemperature:  parseFloat(w.SensibleTemp),
			MaxTemperature:       parseFloat(w.MaxTemp),
			MinTemperature:       parseFloat(w.MinTemp),
			Humidity:             parseFloat(w.Humidity),
			Precipitation:        strings.TrimSpace(string(w.Precipitation)),
			PrecipitationMessage: strings.TrimSpace(string(w.PcpMsg)),
			PM10:                 parseFloat(w.PM10),
			PM25:                 parseFloat(w.PM25),
			UVIndex:              strings.TrimSpace(string(w.UVIndex)),
			ObservedAt:           strings.TrimSpace(string(w.Time)),
		}
	}
	if len(c.Population) > 0 {
		p := c.Population[0]
		level := strings.TrimSpace(string(p.Level))
		if level != "" {
			area.Congestion = &citydata.Congestion{
				Level:         level,
				Message:       strings.TrimSpace(string(p.Message)),
				PopulationMin: parseInt(p.Min),
				PopulationMax: parseInt(p.Max),
				ObservedAt:    strings.TrimSpace(string(p.Time)),
			}
		}
	}
	return area
}

func parseFloat(v flexString) *float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseInt(v flexString) *int {
	parsed, err := strconv.Atoi(strings.TrimSpace(string(v)))
	if err != nil {
		return nil
	}
	return &parsed
}

var _ citydata.Client = (*Client)(nil)
