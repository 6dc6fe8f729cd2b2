// Package presence decides which participants count as alive.
//
// This is the single chokepoint between raw participant records and every
// per-participant money computation: nothing downstream may read a roster
// without passing it through here first, which is what keeps zombie
// participants out of split math.
package presence

import (
	"time"

	"github.com/tably/tably/internal/models"
)

const (
	// HeartbeatPeriod is how often clients are expected to ping.
	HeartbeatPeriod = 10 * time.Second

	// DefaultThreshold is how long a participant may go without a heartbeat
	// before being treated as a zombie. Three missed beats.
	DefaultThreshold = 30 * time.Second
)

// Lapsed reports whether a heartbeat last seen at lastSeen has gone stale
// relative to now.
func Lapsed(lastSeen, now time.Time, threshold time.Duration) bool {
	return now.Sub(lastSeen) > threshold
}

// MarkLiveness returns a copy of participants with IsActive derived from the
// stored heartbeat and leave signals: a participant is active iff they never
// sent an explicit leave and their last heartbeat is within threshold of now.
//
// Liveness is always derived fresh at read time so the validation gate can
// never see a staler view than a client already rendered.
func MarkLiveness(participants []models.Participant, now time.Time, threshold time.Duration) []models.Participant {
	out := make([]models.Participant, len(participants))
	for i, p := range participants {
		p.IsActive = p.LeftAt == 0 && !Lapsed(time.UnixMilli(p.LastSeenAt), now, threshold)
		out[i] = p
	}
	return out
}

// Active returns the subset of participants with IsActive == true. Order is
// preserved; the caller guarantees unique IDs.
func Active(participants []models.Participant) []models.Participant {
	var active []models.Participant
	for _, p := range participants {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active
}
