// Package weather serves mock conditions for a warehouse. There is no real
// sensor feed; readings are a per-warehouse baseline with bounded jitter.
package weather

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"
)

type Condition string

const (
	Sunny        Condition = "Sunny"
	PartlyCloudy Condition = "Partly Cloudy"
	Cloudy       Condition = "Cloudy"
	Rain         Condition = "Rain"
)

var conditions = []Condition{Sunny, PartlyCloudy, Cloudy, Rain}

type Forecast struct {
	Date       string    `json:"date"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Humidity   float64   `json:"humidity"`
	Condition  Condition `json:"condition"`
	RainChance int       `json:"rainChance"`
}

type Report struct {
	WarehouseID string     `json:"warehouseId"`
	Temperature float64    `json:"temperature"`
	Humidity    float64    `json:"humidity"`
	Condition   Condition  `json:"condition"`
	ObservedAt  time.Time  `json:"observedAt"`
	Forecast    []Forecast `json:"forecast"`
}

const (
	forecastDays     = 5
	tempJitter       = 2.0
	humidityJitter   = 5.0
	baseTempMin      = 18.0
	baseTempSpan     = 14.0
	baseHumidityMin  = 40.0
	baseHumiditySpan = 40.0
)

type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewGenerator(seed int64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed)), now: now}
}

// Current returns today's reading and a short forecast for warehouseID.
func (g *Generator) Current(warehouseID string) Report {
	g.mu.Lock()
	defer g.mu.Unlock()

	baseTemp, baseHum := baseline(warehouseID)
	now := g.now().UTC()

	r := Report{
		WarehouseID: warehouseID,
		Temperature: round1(baseTemp + g.jitter(tempJitter)),
		Humidity:    clamp(round1(baseHum+g.jitter(humidityJitter)), 0, 100),
		Condition:   conditions[g.rnd.Intn(len(conditions))],
		ObservedAt:  now,
		Forecast:    make([]Forecast, forecastDays),
	}
	for i := range r.Forecast {
		high := baseTemp + 3 + g.jitter(tempJitter)
		cond := conditions[g.rnd.Intn(len(conditions))]
		r.Forecast[i] = Forecast{
			Date:       now.AddDate(0, 0, i+1).Format(time.DateOnly),
			High:       round1(high),
			Low:        round1(high - 6 - g.rnd.Float64()*3),
			Humidity:   clamp(round1(baseHum+g.jitter(humidityJitter)), 0, 100),
			Condition:  cond,
			RainChance: rainChance(cond, g.rnd),
		}
	}
	return r
}

func (g *Generator) jitter(max float64) float64 {
	return (g.rnd.Float64()*2 - 1) * max
}

// baseline is stable per warehouse so repeated calls hover around the same values.
func baseline(warehouseID string) (temp, humidity float64) {
	h := fnv.New32a()
	h.Write([]byte(warehouseID))
	sum := h.Sum32()
	temp = baseTempMin + float64(sum%1000)/1000*baseTempSpan
	humidity = baseHumidityMin + float64((sum/1000)%1000)/1000*baseHumiditySpan
	return temp, humidity
}

func rainChance(c Condition, rnd *rand.Rand) int {
	switch c {
	case Rain:
		return 60 + rnd.Intn(41)
	case Cloudy:
		return 20 + rnd.Intn(30)
	default:
		return rnd.Intn(20)
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
