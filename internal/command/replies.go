package command

import (
	"encoding/json"

	"github.com/riverbend/marketsim/internal/candle"
)

func encodeEnvelope(typ string, data any) []byte {
	obj := map[string]any{"type": typ}
	if data != nil {
		for k, v := range data.(map[string]any) {
			obj[k] = v
		}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return []byte(`{"type":"` + typ + `"}`)
	}
	return b
}

// Started replies to a "start" command.
func Started() []byte { return encodeEnvelope("started", nil) }

// SimulationReset replies to a "reset" command alongside CandleReset.
func SimulationReset() []byte { return encodeEnvelope("simulationReset", nil) }

// CandleReset is the second of the pair of frames a "reset" emits.
func CandleReset() []byte { return encodeEnvelope("candleReset", nil) }

// Pong echoes a ping's opaque timestamp value verbatim.
func Pong(timestamp json.RawMessage) []byte {
	return encodeEnvelope("pong", map[string]any{"timestamp": json.RawMessage(timestamp)})
}

// TimeoutFrame is the close-initiating frame sent once a session
// reaches its 60-minute hard cap.
func TimeoutFrame(message string) []byte {
	return encodeEnvelope("timeout", map[string]any{"message": message})
}

// CandleHistory replies to a "getCandles" command. Candles are encoded
// through candle.Candle.ToMap so the keys match the lowercase shape a
// tick frame's currentCandles/completedCandles use for the same type.
func CandleHistory(timeframe int, completed []candle.Candle, current *candle.Candle) []byte {
	candles := make([]map[string]any, len(completed))
	for i, c := range completed {
		candles[i] = c.ToMap()
	}

	data := map[string]any{
		"timeframe": timeframe,
		"candles":   candles,
	}
	if current != nil {
		data["current"] = current.ToMap()
	} else {
		data["current"] = nil
	}
	return encodeEnvelope("candleHistory", map[string]any{"data": data})
}
