package weather

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionMist    Condition = "mist"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// CodeInfo is the bilingual description and icon key of a WMO weather code.
type CodeInfo struct {
	Condition Condition
	En        string
	Ru        string
	Icon      string
}

// Description returns the text for the given language tag, English by default.
func (c CodeInfo) Description(language string) string {
	if language == "ru" {
		return c.Ru
	}
	return c.En
}

// UnknownCode is returned for codes missing from the table.
var UnknownCode = CodeInfo{Condition: ConditionUnknown, En: "Unknown", Ru: "Неизвестно", Icon: "01d"}

var codes = map[int]CodeInfo{
	0:  {ConditionClear, "Clear sky", "Ясно", "01d"},
	1:  {ConditionClear, "Mainly clear", "Преимущественно ясно", "02d"},
	2:  {ConditionCloudy, "Partly cloudy", "Переменная облачность", "02d"},
	3:  {ConditionCloudy, "Overcast", "Пасмурно", "04d"},
	45: {ConditionMist, "Foggy", "Туман", "50d"},
	48: {ConditionMist, "Depositing rime fog", "Изморозь", "50d"},
	51: {ConditionRain, "Light drizzle", "Лёгкая морось", "09d"},
	53: {ConditionRain, "Moderate drizzle", "Морось", "09d"},
	55: {ConditionRain, "Dense drizzle", "Сильная морось", "09d"},
	56: {ConditionRain, "Light freezing drizzle", "Лёгкая ледяная морось", "09d"},
	57: {ConditionRain, "Dense freezing drizzle", "Сильная ледяная морось", "09d"},
	61: {ConditionRain, "Slight rain", "Небольшой дождь", "10d"},
	63: {ConditionRain, "Moderate rain", "Дождь", "10d"},
	65: {ConditionRain, "Heavy rain", "Сильный дождь", "10d"},
	66: {ConditionRain, "Light freezing rain", "Ледяной дождь", "10d"},
	67: {ConditionRain, "Heavy freezing rain", "Сильный ледяной дождь", "10d"},
	71: {ConditionSnow, "Slight snow", "Небольшой снег", "13d"},
	73: {ConditionSnow, "Moderate snow", "Снег", "13d"},
	75: {ConditionSnow, "Heavy snow", "Сильный снег", "13d"},
	77: {ConditionSnow, "Snow grains", "Снежные зёрна", "13d"},
	80: {ConditionRain, "Slight rain showers", "Небольшой ливень", "09d"},
	81: {ConditionRain, "Moderate rain showers", "Ливень", "09d"},
	82: {ConditionRain, "Violent rain showers", "Сильный ливень", "09d"},
	85: {ConditionSnow, "Slight snow showers", "Небольшой снегопад", "13d"},
	86: {ConditionSnow, "Heavy snow showers", "Сильный снегопад", "13d"},
	95: {ConditionStorm, "Thunderstorm", "Гроза", "11d"},
	96: {ConditionStorm, "Thunderstorm with slight hail", "Гроза с градом", "11d"},
	99: {ConditionStorm, "Thunderstorm with heavy hail", "Гроза с сильным градом", "11d"},
}

// LookupCode maps a WMO weather code to its description and icon.
func LookupCode(code int) CodeInfo {
	if info, ok := codes[code]; ok {
		return info
	}
	return UnknownCode
}
