package registry

import "log"

// EnforceTimeouts enqueues timeoutFrame to, and removes, every session
// whose age has reached timeoutMs. It returns the ids removed so the
// transport layer can close the underlying connections.
func (r *Registry) EnforceTimeouts(nowMs int64, timeoutMs int64, timeoutFrame []byte) []uint32 {
	var expired []uint32
	r.ForEach(func(id uint32, e *Entry) {
		if nowMs-e.ConnectedAtMs >= timeoutMs {
			e.Enqueue(timeoutFrame)
			expired = append(expired, id)
		}
	})
	for _, id := range expired {
		r.Remove(id)
	}
	return expired
}

// LogSummary writes one line per active session describing its age and
// remaining lifetime before the timeoutMs cap, the way a periodic
// housekeeping sweep reports on long-lived connections.
func (r *Registry) LogSummary(nowMs int64, timeoutMs int64, logger *log.Logger) {
	count := 0
	r.ForEach(func(id uint32, e *Entry) {
		count++
		ageMs := nowMs - e.ConnectedAtMs
		remainingMs := timeoutMs - ageMs
		if remainingMs < 0 {
			remainingMs = 0
		}
		logger.Printf("session %d: age=%dms remaining=%dms queued=%d dropped=%d malformed=%d",
			id, ageMs, remainingMs, e.outbound.Len(), e.DroppedOutbound(), e.MalformedCount())
	})
	logger.Printf("housekeeping: %d active sessions", count)
}
