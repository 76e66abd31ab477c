package engine

import (
	"github.com/riverbend/marketsim/internal/market"
)

const (
	shockActiveDurationMs   int64 = 5000
	shockCooldownDurationMs int64 = 20000
	shockWarmupTicks              = 20
	shockFireProbability         = 0.03
)

// NewsShockController is a bounded Idle -> Active -> Cooldown state
// machine gating the occasional large multiplicative price move a
// PriceEngine may apply on a given tick.
type NewsShockController struct {
	rng *RNG

	state               market.ShockState
	activeUntilMs       int64
	cooldownUntilMs     int64
	ticksSinceLastShock int
}

// NewNewsShockController creates a controller in the Idle state.
func NewNewsShockController(rng *RNG) *NewsShockController {
	return &NewsShockController{rng: rng, state: market.Idle}
}

// Reset returns the controller to Idle with no pending cooldown.
func (c *NewsShockController) Reset() {
	c.state = market.Idle
	c.activeUntilMs = 0
	c.cooldownUntilMs = 0
	c.ticksSinceLastShock = 0
}

// Expire lets the state machine catch up to wall-clock time: Active
// lapses into Cooldown once activeUntilMs passes, and Cooldown lapses
// into Idle once cooldownUntilMs passes. It is idempotent.
func (c *NewsShockController) Expire(nowMs int64) {
	switch c.state {
	case market.Active:
		if nowMs >= c.activeUntilMs {
			c.state = market.Cooldown
			c.cooldownUntilMs = nowMs + shockCooldownDurationMs
		}
	case market.Cooldown:
		if nowMs >= c.cooldownUntilMs {
			c.state = market.Idle
		}
	}
}

// Enable attempts the Idle -> Active transition. It fails (returns
// false, no state change) if the controller is still within a cooldown
// window, or already Active.
func (c *NewsShockController) Enable(nowMs int64) bool {
	c.Expire(nowMs)
	if c.state != market.Idle {
		return false
	}
	if nowMs < c.cooldownUntilMs {
		return false
	}
	c.state = market.Active
	c.activeUntilMs = nowMs + shockActiveDurationMs
	c.ticksSinceLastShock = 0
	return true
}

// Disable forces an immediate exit from Active into Cooldown. It is a
// no-op outside the Active state.
func (c *NewsShockController) Disable(nowMs int64) {
	c.Expire(nowMs)
	if c.state != market.Active {
		return
	}
	c.state = market.Cooldown
	c.activeUntilMs = nowMs
	c.cooldownUntilMs = nowMs + shockCooldownDurationMs
}

// TryShock is called once per tick while Active. It returns a price
// multiplier, whether a shock fired this call, and a direction label.
// Outside the Active state it always reports no shock.
func (c *NewsShockController) TryShock() (multiplier float64, fired bool, shockType string) {
	if c.state != market.Active {
		return 1, false, ""
	}

	c.ticksSinceLastShock++
	if c.ticksSinceLastShock < shockWarmupTicks {
		return 1, false, ""
	}

	if c.rng.Float64() >= shockFireProbability {
		return 1, false, ""
	}

	direction := 1.0
	shockType = "bullish"
	if c.rng.Float64() < 0.5 {
		direction = -1.0
		shockType = "bearish"
	}

	pct := 0.01 + c.rng.Float64()*0.02 // uniform [0.01, 0.03]
	c.ticksSinceLastShock = 0
	return 1 + direction*pct, true, shockType
}

// State returns the controller's current phase, without mutating it.
func (c *NewsShockController) State() market.ShockState { return c.state }

// ActiveRemainingSec returns whole seconds left in the Active window.
func (c *NewsShockController) ActiveRemainingSec(nowMs int64) int {
	return remainingSec(c.activeUntilMs, nowMs)
}

// CooldownRemainingSec returns whole seconds left in the Cooldown window.
func (c *NewsShockController) CooldownRemainingSec(nowMs int64) int {
	return remainingSec(c.cooldownUntilMs, nowMs)
}

func remainingSec(untilMs, nowMs int64) int {
	remainMs := untilMs - nowMs
	if remainMs <= 0 {
		return 0
	}
	return int((remainMs + 999) / 1000)
}
