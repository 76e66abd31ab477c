package market

import "math"

// TickSize is the minimum price increment for every symbol in the system.
const TickSize = 0.05

// ticksPerUnit is the exact number of ticks in one price unit (20).
const ticksPerUnit = 1 / TickSize

// RoundTick snaps a price to the nearest tick. Dividing the tick count
// by ticksPerUnit (rather than multiplying by TickSize) returns the same
// float64 as the decimal literal, e.g. exactly 179.95.
func RoundTick(price float64) float64 {
	return math.Round(price*ticksPerUnit) / ticksPerUnit
}
