package command

import (
	"github.com/riverbend/marketsim/internal/market"
	"github.com/riverbend/marketsim/internal/registry"
)

// Apply parses one inbound frame and mutates e.Session accordingly,
// enqueueing any reply the command calls for. A payload that fails to
// parse as JSON is dropped and counted; an unrecognized type is
// silently ignored, matching the parser's no-surprises validation
// philosophy — invalid input never produces an error reply, only the
// absence of effect.
func Apply(e *registry.Entry, raw []byte, nowMs int64) {
	cmd, err := parse(raw)
	if err != nil {
		e.RecordMalformed()
		return
	}

	switch cmd.Type {
	case "start":
		applyStart(e, cmd)
		e.Enqueue(Started())

	case "sentiment":
		if v, ok := market.ParseSentiment(asString(cmd.Value)); ok {
			e.Session.SetSentiment(v)
		}

	case "intensity":
		if v, ok := market.ParseIntensity(asString(cmd.Value)); ok {
			e.Session.SetIntensity(v)
		}

	case "spread":
		if v, ok := asFloat(cmd.Value); ok {
			e.Session.SetSpread(v)
		}

	case "speed":
		if v, ok := asFloat(cmd.Value); ok {
			e.Session.SetSpeed(v)
		}

	case "pause":
		if v, ok := asBool(cmd.Value); ok {
			e.Session.SetPaused(v)
		}

	case "reset":
		e.Session.Reset()
		e.Enqueue(SimulationReset())
		e.Enqueue(CandleReset())

	case "newsShock":
		if v, ok := asBool(cmd.Value); ok {
			if v {
				e.Session.EnableNewsShock(nowMs)
			} else {
				e.Session.DisableNewsShock(nowMs)
			}
		}

	case "getCandles":
		completed, current, ok := e.Session.CandleSnapshot(cmd.Timeframe)
		if ok {
			e.Enqueue(CandleHistory(cmd.Timeframe, completed, current))
		}

	case "ping":
		e.Enqueue(Pong(cmd.Timestamp))

	default:
		// unknown command types are silently ignored
	}
}

func applyStart(e *registry.Entry, cmd *wireCommand) {
	cfg := e.Session.Config()
	if cmd.Config != nil {
		if cmd.Config.Symbol != nil {
			cfg.Symbol = *cmd.Config.Symbol
		}
		if cmd.Config.Price != nil {
			cfg.BasePrice = *cmd.Config.Price
		}
		if cmd.Config.Spread != nil {
			cfg.Spread = *cmd.Config.Spread
		}
		if cmd.Config.Sentiment != nil {
			if v, ok := market.ParseSentiment(*cmd.Config.Sentiment); ok {
				cfg.Sentiment = v
			}
		}
		if cmd.Config.Intensity != nil {
			if v, ok := market.ParseIntensity(*cmd.Config.Intensity); ok {
				cfg.Intensity = v
			}
		}
		if cmd.Config.Speed != nil {
			cfg.Speed = *cmd.Config.Speed
		}
	}
	e.Session.Start(cfg)
}
