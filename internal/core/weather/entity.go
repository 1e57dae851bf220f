package weather

import (
	"fmt"
	"strings"
)

// Partition separates cached payloads by upstream call
type Partition string

const (
	PartitionCurrent     Partition = "current"
	PartitionForecast    Partition = "forecast"
	PartitionCoordinates Partition = "coordinates"
	PartitionAirQuality  Partition = "air"
)

// Partitions lists every partition of the cache
func Partitions() []Partition {
	return []Partition{PartitionCurrent, PartitionForecast, PartitionCoordinates, PartitionAirQuality}
}

func (p Partition) String() string {
	return string(p)
}

// Key builds the storage key of id within the partition
func (p Partition) Key(id string) string {
	return "weather:" + string(p) + ":" + id
}

// CityKey normalizes a city name for use as a cache id
func CityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// CoordinatesKey formats a coordinate pair with four decimals, roughly 11 m of precision
func CoordinatesKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}
