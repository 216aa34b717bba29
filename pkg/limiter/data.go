package limiter

import "time"

// timing data tracked per host so successive metadata requests stay polite
type hostTiming struct {
	lastFetchAt time.Time
}

func (h *hostTiming) LastFetchAt() time.Time {
	return h.lastFetchAt
}
