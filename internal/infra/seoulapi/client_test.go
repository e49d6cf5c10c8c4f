package seoulapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulfit/seoulfit-api/internal/domain/citydata"
)

const jsonBody = `{
  "CITYDATA": {
    "AREA_NM": "강남역",
    "AREA_CD": "POI014",
    "LIVE_PPLTN_STTS": [{
      "AREA_CONGEST_LVL": "약간 붐빔",
      "AREA_CONGEST_MSG": "사람들이 몰려있을 수 있어요.",
      "AREA_PPLTN_MIN": "36000",
      "AREA_PPLTN_MAX": 38000,
      "PPLTN_TIME": "2024-08-01 14:00"
    }],
    "WEATHER_STTS": [{
      "WEATHER_TIME": "2024-08-01 14:00",
      "TEMP": "31.5",
      "SENSIBLE_TEMP": 34.1,
      "HUMIDITY": "70",
      "PRECIPITATION": "-",
      "PM10": null,
      "UV_INDEX": "높음"
    }]
  },
  "RESULT": {"RESULT.CODE": "INFO-000", "RESULT.MESSAGE": "정상 처리되었습니다."}
}`

const xmlBody = `<?xml version="1.0" encoding="UTF-8"?>
<SeoulRtd.citydata>
  <list_total_count>1</list_total_count>
  <RESULT>
    <RESULT.CODE>INFO-000</RESULT.CODE>
    <RESULT.MESSAGE>정상 처리되었습니다.</RESULT.MESSAGE>
  </RESULT>
  <CITYDATA>
    <AREA_NM>서울역</AREA_NM>
    <AREA_CD>POI033</AREA_CD>
    <LIVE_PPLTN_STTS>
      <LIVE_PPLTN_STTS>
        <AREA_CONGEST_LVL>보통</AREA_CONGEST_LVL>
        <AREA_PPLTN_MIN>12000</AREA_PPLTN_MIN>
        <AREA_PPLTN_MAX>14000</AREA_PPLTN_MAX>
      </LIVE_PPLTN_STTS>
    </LIVE_PPLTN_STTS>
    <WEATHER_STTS>
      <WEATHER_STTS>
        <TEMP>28.2</TEMP>
        <PM25>18</PM25>
      </WEATHER_STTS>
    </WEATHER_STTS>
  </CITYDATA>
</SeoulRtd.citydata>`

func TestFetchJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/test-key/json/citydata/1/5/POI014", r.URL.Path)
		_, _ = w.Write([]byte(jsonBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	area, err := client.Fetch(context.Background(), citydata.POI{Code: "POI014"})
	require.NoError(t, err)
	require.Equal(t, "강남역", area.Name)
	require.Equal(t, 31.5, *area.Weather.Temperature)
	require.Equal(t, 34.1, *area.Weather.SensibleTemperature)
	require.Nil(t, area.Weather.PM10)
	require.Equal(t, "높음", area.Weather.UVIndex)
	require.Equal(t, "약간 붐빔", area.Congestion.Level)
	require.Equal(t, 36000, *area.Congestion.PopulationMin)
	require.Equal(t, 38000, *area.Congestion.PopulationMax)
	require.Equal(t, fixedNow, area.FetchedAt)
}

func TestFetchFallsBackToXML(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if strings.Contains(r.URL.Path, "/json/") {
			_, _ = w.Write([]byte(`<html>gateway hiccup</html>`))
			return
		}
		require.Contains(t, r.URL.Path, "/xml/")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(xmlBody))
	}))
	defer server.Close()

	area, err := newTestClient(server.URL).Fetch(context.Background(), citydata.POI{Code: "POI033"})
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, "POI033", area.Code)
	require.Equal(t, 28.2, *area.Weather.Temperature)
	require.Equal(t, 18.0, *area.Weather.PM25)
	require.Equal(t, "보통", area.Congestion.Level)
	require.Equal(t, 14000, *area.Congestion.PopulationMax)
}

func TestFetchFallsBackOnAPIErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/json/") {
			_, _ = w.Write([]byte(`{"RESULT":{"RESULT.CODE":"ERROR-500","RESULT.MESSAGE":"서버 오류"}}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), citydata.POI{Code: "POI014"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=502")
	require.Contains(t, err.Error(), "ERROR-500")
}

func TestFetchWithoutKey(t *testing.T) {
	_, err := NewClient("", " ").Fetch(context.Background(), citydata.POI{Code: "POI014"})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestToAreaSkipsEmptyCongestion(t *testing.T) {
	area := rawCity{Code: "POI001", Population: []rawPopulation{{}}}.toArea()
	require.Nil(t, area.Congestion)
	require.Nil(t, area.Weather)
}

var fixedNow = time.Date(2024, 8, 1, 5, 0, 0, 0, time.UTC)

func newTestClient(baseURL string) *Client {
	client := NewClient(baseURL, "test-key")
	client.now = func() time.Time { return fixedNow }
	return client
}
