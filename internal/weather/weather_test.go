package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrent_BoundedAroundBaseline(t *testing.T) {
	now := time.Date(2024, 9, 1, 6, 0, 0, 0, time.UTC)
	g := NewGenerator(42, func() time.Time { return now })
	baseTemp, baseHum := baseline("nashik-1")

	for i := 0; i < 50; i++ {
		r := g.Current("nashik-1")
		assert.Equal(t, "nashik-1", r.WarehouseID)
		assert.InDelta(t, baseTemp, r.Temperature, tempJitter+0.1)
		assert.InDelta(t, baseHum, r.Humidity, humidityJitter+0.1)
		assert.GreaterOrEqual(t, r.Humidity, 0.0)
		assert.LessOrEqual(t, r.Humidity, 100.0)
		assert.Contains(t, conditions, r.Condition)
		assert.Len(t, r.Forecast, forecastDays)
		assert.Equal(t, "2024-09-02", r.Forecast[0].Date)
		for _, f := range r.Forecast {
			assert.Less(t, f.Low, f.High)
			assert.GreaterOrEqual(t, f.RainChance, 0)
			assert.LessOrEqual(t, f.RainChance, 100)
		}
	}
}

func TestBaseline_StablePerWarehouse(t *testing.T) {
	t1, h1 := baseline("nashik-1")
	t2, h2 := baseline("nashik-1")
	assert.Equal(t, t1, t2)
	assert.Equal(t, h1, h2)
	assert.GreaterOrEqual(t, t1, baseTempMin)
	assert.Less(t, t1, baseTempMin+baseTempSpan)
}
