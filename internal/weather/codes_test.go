package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnownCodesAreDescribed(t *testing.T) {
	assert.Len(t, codes, 28)

	for code := range codes {
		info := LookupCode(code)
		assert.NotEmpty(t, info.En, "code %d", code)
		assert.NotEmpty(t, info.Ru, "code %d", code)
		assert.NotEmpty(t, info.Icon, "code %d", code)
		assert.NotEqual(t, ConditionUnknown, info.Condition, "code %d", code)
	}
}

func TestUnknownCodeFallsBack(t *testing.T) {
	for _, code := range []int{9999, -1, 4} {
		info := LookupCode(code)
		assert.Equal(t, UnknownCode, info)
		assert.Equal(t, "Unknown", info.Description("en"))
		assert.Equal(t, "Неизвестно", info.Description("ru"))
	}
}

func TestDescriptionLanguage(t *testing.T) {
	info := LookupCode(95)
	assert.Equal(t, "Thunderstorm", info.Description("en"))
	assert.Equal(t, "Гроза", info.Description("ru"))
	assert.Equal(t, "Thunderstorm", info.Description(""))
	assert.Equal(t, ConditionStorm, info.Condition)
}
