package citydata

import (
	"math"

	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

// hotspots lists the city's real-time data areas. The upstream accepts the
// code as the area key.
var hotspots = []POI{
	{Code: "POI001", Name: "강남 MICE 관광특구", Lat: 37.5116, Lng: 127.0593},
	{Code: "POI002", Name: "동대문 관광특구", Lat: 37.5665, Lng: 127.0092},
	{Code: "POI003", Name: "명동 관광특구", Lat: 37.5636, Lng: 126.9827},
	{Code: "POI004", Name: "이태원 관광특구", Lat: 37.5345, Lng: 126.9946},
	{Code: "POI005", Name: "잠실 관광특구", Lat: 37.5112, Lng: 127.0982},
	{Code: "POI006", Name: "종로·청계 관광특구", Lat: 37.5700, Lng: 126.9920},
	{Code: "POI007", Name: "홍대 관광특구", Lat: 37.5563, Lng: 126.9220},
	{Code: "POI008", Name: "경복궁", Lat: 37.5796, Lng: 126.9770},
	{Code: "POI009", Name: "광화문·덕수궁", Lat: 37.5697, Lng: 126.9763},
	{Code: "POI010", Name: "보신각", Lat: 37.5698, Lng: 126.9834},
	{Code: "POI011", Name: "서울 암사동 유적", Lat: 37.5603, Lng: 127.1304},
	{Code: "POI012", Name: "창덕궁·종묘", Lat: 37.5779, Lng: 126.9910},
	{Code: "POI013", Name: "가산디지털단지역", Lat: 37.4816, Lng: 126.8827},
	{Code: "POI014", Name: "강남역", Lat: 37.4979, Lng: 127.0276},
	{Code: "POI015", Name: "건대입구역", Lat: 37.5404, Lng: 127.0692},
	{Code: "POI016", Name: "고덕역", Lat: 37.5551, Lng: 127.1540},
	{Code: "POI017", Name: "고속터미널역", Lat: 37.5049, Lng: 127.0049},
	{Code: "POI018", Name: "교대역", Lat: 37.4934, Lng: 127.0142},
	{Code: "POI019", Name: "구로디지털단지역", Lat: 37.4852, Lng: 126.9015},
	{Code: "POI020", Name: "구로역", Lat: 37.5033, Lng: 126.8820},
	{Code: "POI021", Name: "군자역", Lat: 37.5571, Lng: 127.0795},
	{Code: "POI022", Name: "남구로역", Lat: 37.4860, Lng: 126.8873},
	{Code: "POI023", Name: "대림역", Lat: 37.4925, Lng: 126.8958},
	{Code: "POI024", Name: "동대문역", Lat: 37.5714, Lng: 127.0098},
	{Code: "POI025", Name: "뚝섬역", Lat: 37.5474, Lng: 127.0474},
	{Code: "POI026", Name: "미아사거리역", Lat: 37.6132, Lng: 127.0301},
	{Code: "POI027", Name: "발산역", Lat: 37.5585, Lng: 126.8376},
	{Code: "POI028", Name: "북한산우이역", Lat: 37.6630, Lng: 127.0126},
	{Code: "POI029", Name: "사당역", Lat: 37.4765, Lng: 126.9816},
	{Code: "POI030", Name: "삼각지역", Lat: 37.5347, Lng: 126.9731},
	{Code: "POI031", Name: "서울대입구역", Lat: 37.4812, Lng: 126.9527},
	{Code: "POI032", Name: "서울식물원·마곡나루역", Lat: 37.5670, Lng: 126.8272},
	{Code: "POI033", Name: "서울역", Lat: 37.5547, Lng: 126.9707},
	{Code: "POI034", Name: "선릉역", Lat: 37.5045, Lng: 127.0490},
	{Code: "POI035", Name: "성신여대입구역", Lat: 37.5926, Lng: 127.0164},
	{Code: "POI036", Name: "수유역", Lat: 37.6380, Lng: 127.0257},
	{Code: "POI037", Name: "신논현역·논현역", Lat: 37.5046, Lng: 127.0250},
	{Code: "POI038", Name: "신도림역", Lat: 37.5088, Lng: 126.8913},
	{Code: "POI039", Name: "신림역", Lat: 37.4842, Lng: 126.9297},
	{Code: "POI040", Name: "신촌·이대역", Lat: 37.5568, Lng: 126.9400},
	{Code: "POI041", Name: "양재역", Lat: 37.4841, Lng: 127.0346},
	{Code: "POI042", Name: "역삼역", Lat: 37.5006, Lng: 127.0364},
	{Code: "POI043", Name: "연신내역", Lat: 37.6190, Lng: 126.9210},
	{Code: "POI044", Name: "오목교역·목동운동장", Lat: 37.5244, Lng: 126.8750},
	{Code: "POI045", Name: "왕십리역", Lat: 37.5612, Lng: 127.0371},
	{Code: "POI046", Name: "용산역", Lat: 37.5298, Lng: 126.9648},
	{Code: "POI047", Name: "이태원역", Lat: 37.5344, Lng: 126.9943},
	{Code: "POI048", Name: "장지역", Lat: 37.4786, Lng: 127.1262},
	{Code: "POI049", Name: "장한평역", Lat: 37.5613, Lng: 127.0645},
	{Code: "POI050", Name: "천호역", Lat: 37.5386, Lng: 127.1237},
	{Code: "POI051", Name: "총신대입구(이수)역", Lat: 37.4868, Lng: 126.9820},
	{Code: "POI052", Name: "충정로역", Lat: 37.5597, Lng: 126.9637},
	{Code: "POI053", Name: "합정역", Lat: 37.5495, Lng: 126.9139},
	{Code: "POI054", Name: "혜화역", Lat: 37.5822, Lng: 127.0019},
	{Code: "POI055", Name: "홍대입구역(2호선)", Lat: 37.5572, Lng: 126.9245},
	{Code: "POI056", Name: "회기역", Lat: 37.5895, Lng: 127.0579},
	{Code: "POI057", Name: "4·19 카페거리", Lat: 37.6475, Lng: 127.0110},
	{Code: "POI058", Name: "가락시장", Lat: 37.4925, Lng: 127.1180},
	{Code: "POI059", Name: "여의도", Lat: 37.5259, Lng: 126.9244},
	{Code: "POI060", Name: "가로수길", Lat: 37.5210, Lng: 127.0230},
	{Code: "POI061", Name: "북촌한옥마을", Lat: 37.5826, Lng: 126.9836},
	{Code: "POI062", Name: "광장(전통)시장", Lat: 37.5700, Lng: 126.9996},
	{Code: "POI063", Name: "김포공항", Lat: 37.5620, Lng: 126.8010},
	{Code: "POI064", Name: "낙산공원·이화마을", Lat: 37.5800, Lng: 127.0070},
	{Code: "POI065", Name: "노량진", Lat: 37.5130, Lng: 126.9410},
	{Code: "POI066", Name: "덕수궁길·정동길", Lat: 37.5660, Lng: 126.9740},
	{Code: "POI067", Name: "방배역 먹자골목", Lat: 37.4815, Lng: 126.9975},
	{Code: "POI068", Name: "서촌", Lat: 37.5800, Lng: 126.9700},
	{Code: "POI069", Name: "성수카페거리", Lat: 37.5445, Lng: 127.0560},
	{Code: "POI070", Name: "수유리 먹자골목", Lat: 37.6370, Lng: 127.0240},
	{Code: "POI071", Name: "쌍문동 맛집거리", Lat: 37.6485, Lng: 127.0345},
	{Code: "POI072", Name: "서울숲공원", Lat: 37.5444, Lng: 127.0374},
	{Code: "POI073", Name: "압구정로데오거리", Lat: 37.5270, Lng: 127.0400},
	{Code: "POI074", Name: "연남동", Lat: 37.5620, Lng: 126.9250},
	{Code: "POI075", Name: "영등포 타임스퀘어", Lat: 37.5170, Lng: 126.9035},
	{Code: "POI076", Name: "외대앞", Lat: 37.5960, Lng: 127.0600},
	{Code: "POI077", Name: "용리단길", Lat: 37.5310, Lng: 126.9700},
	{Code: "POI078", Name: "여의도한강공원", Lat: 37.5284, Lng: 126.9338},
	{Code: "POI079", Name: "이태원 앤틱가구거리", Lat: 37.5330, Lng: 126.9920},
	{Code: "POI080", Name: "인사동·익선동", Lat: 37.5740, Lng: 126.9860},
	{Code: "POI081", Name: "창동 신경제 중심지", Lat: 37.6530, Lng: 127.0480},
	{Code: "POI082", Name: "청담동 명품거리", Lat: 37.5250, Lng: 127.0470},
	{Code: "POI083", Name: "뚝섬한강공원", Lat: 37.5294, Lng: 127.0697},
	{Code: "POI084", Name: "청량리 제기동 일대 전통시장", Lat: 37.5810, Lng: 127.0390},
	{Code: "POI085", Name: "해방촌·경리단길", Lat: 37.5420, Lng: 126.9870},
	{Code: "POI086", Name: "DDP(동대문디자인플라자)", Lat: 37.5670, Lng: 127.0095},
	{Code: "POI087", Name: "DMC(디지털미디어시티)", Lat: 37.5780, Lng: 126.8900},
	{Code: "POI088", Name: "반포한강공원", Lat: 37.5103, Lng: 126.9961},
	{Code: "POI089", Name: "강서한강공원", Lat: 37.5880, Lng: 126.8150},
	{Code: "POI090", Name: "고척돔", Lat: 37.4982, Lng: 126.8670},
	{Code: "POI091", Name: "남산공원", Lat: 37.5512, Lng: 126.9882},
	{Code: "POI092", Name: "광나루한강공원", Lat: 37.5480, Lng: 127.1200},
	{Code: "POI093", Name: "광화문광장", Lat: 37.5725, Lng: 126.9769},
	{Code: "POI094", Name: "국립중앙박물관·용산가족공원", Lat: 37.5240, Lng: 126.9800},
	{Code: "POI095", Name: "난지한강공원", Lat: 37.5660, Lng: 126.8750},
	{Code: "POI096", Name: "노들섬", Lat: 37.5175, Lng: 126.9590},
	{Code: "POI097", Name: "망원한강공원", Lat: 37.5550, Lng: 126.8950},
	{Code: "POI098", Name: "북서울꿈의숲", Lat: 37.6205, Lng: 127.0410},
	{Code: "POI099", Name: "불광천", Lat: 37.5870, Lng: 126.9120},
	{Code: "POI100", Name: "서리풀공원·몽마르뜨공원", Lat: 37.4900, Lng: 127.0050},
	{Code: "POI101", Name: "서울광장", Lat: 37.5658, Lng: 126.9780},
	{Code: "POI102", Name: "서울대공원", Lat: 37.4270, Lng: 127.0170},
	{Code: "POI103", Name: "아차산", Lat: 37.5600, Lng: 127.1050},
	{Code: "POI104", Name: "양화한강공원", Lat: 37.5380, Lng: 126.9000},
	{Code: "POI105", Name: "어린이대공원", Lat: 37.5480, Lng: 127.0810},
	{Code: "POI106", Name: "월드컵공원", Lat: 37.5650, Lng: 126.8850},
	{Code: "POI107", Name: "응봉산", Lat: 37.5500, Lng: 127.0320},
	{Code: "POI108", Name: "이촌한강공원", Lat: 37.5170, Lng: 126.9700},
	{Code: "POI109", Name: "잠실종합운동장", Lat: 37.5150, Lng: 127.0730},
	{Code: "POI110", Name: "잠실한강공원", Lat: 37.5180, Lng: 127.0860},
	{Code: "POI111", Name: "잠원한강공원", Lat: 37.5210, Lng: 127.0130},
	{Code: "POI112", Name: "청계산", Lat: 37.4480, Lng: 127.0550},
	{Code: "POI113", Name: "청와대", Lat: 37.5866, Lng: 126.9748},
	{Code: "POI114", Name: "북창동 먹자골목", Lat: 37.5630, Lng: 126.9790},
	{Code: "POI115", Name: "남대문시장", Lat: 37.5590, Lng: 126.9770},
	{Code: "POI116", Name: "잠실역", Lat: 37.5133, Lng: 127.1001},
	{Code: "POI117", Name: "잠실새내역", Lat: 37.5116, Lng: 127.0863},
	{Code: "POI118", Name: "송리단길·호수단길", Lat: 37.5080, Lng: 127.1070},
	{Code: "POI119", Name: "신정네거리역", Lat: 37.5200, Lng: 126.8530},
	{Code: "POI120", Name: "보라매공원", Lat: 37.4930, Lng: 126.9190},
	{Code: "POI121", Name: "서대문독립공원", Lat: 37.5740, Lng: 126.9560},
	{Code: "POI122", Name: "올림픽공원", Lat: 37.5210, Lng: 127.1210},
	{Code: "POI123", Name: "안양천", Lat: 37.5300, Lng: 126.8800},
	{Code: "POI124", Name: "여의서로", Lat: 37.5310, Lng: 126.9200},
	{Code: "POI125", Name: "홍제폭포", Lat: 37.5850, Lng: 126.9340},
}

// POIs returns a copy of the hotspot table.
func POIs() []POI {
	out := make([]POI, len(hotspots))
	copy(out, hotspots)
	return out
}

// Nearest returns the hotspot closest to p in degree space. Ties keep the
// earlier table entry.
func Nearest(p spatial.Point) (POI, bool) {
	return nearestIn(hotspots, p)
}

func nearestIn(table []POI, p spatial.Point) (POI, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, poi := range table {
		d := spatial.SquaredDegrees(p, poi.Point())
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return POI{}, false
	}
	return table[best], true
}

// LookupPOI finds a hotspot by code.
func LookupPOI(code string) (POI, bool) {
	for _, poi := range hotspots {
		if poi.Code == code {
			return poi, true
		}
	}
	return POI{}, false
}
