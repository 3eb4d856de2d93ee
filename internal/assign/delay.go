package assign

import (
	hashset "github.com/hashicorp/go-set/v3"
)

// DelayState is the grace-window bookkeeping carried across rounds. Zero
// value is a fresh, inactive state.
type DelayState struct {
	ScheduledRebalanceAt int64
	CurrentDelayMillis   int64
	PreviousMembers      *hashset.Set[WorkerId]
}

// Resolve decides the workforce to deal work to this round and which of the
// previously-known members are missing. It mutates s in place per spec
// §4.2's four cases; a maxDelayMillis of 0 evicts missing workers at once.
func (s *DelayState) Resolve(workers []WorkerId, now, maxDelayMillis int64) (workforce []WorkerId, missing []WorkerId) {
	current := hashset.New[WorkerId](len(workers))
	current.InsertSlice(workers)

	if s.PreviousMembers == nil {
		s.PreviousMembers = hashset.New[WorkerId](0)
	}

	missingSet := s.PreviousMembers.Difference(current)

	switch {
	case missingSet.Empty():
		// Case A: no missing workers.
		s.ScheduledRebalanceAt = 0
		s.CurrentDelayMillis = 0
		s.PreviousMembers = current
		return workers, nil

	case s.ScheduledRebalanceAt > 0 && now >= s.ScheduledRebalanceAt:
		// Case B: grace window expired. Evict.
		s.ScheduledRebalanceAt = 0
		s.CurrentDelayMillis = 0
		s.PreviousMembers = current
		return workers, nil

	case s.ScheduledRebalanceAt > 0 && now < s.ScheduledRebalanceAt:
		// Case C: grace window still active. Extend and hold.
		delay := s.ScheduledRebalanceAt - now
		if delay > maxDelayMillis {
			delay = maxDelayMillis
		}
		if delay < 0 {
			delay = 0
		}
		s.CurrentDelayMillis = delay
		s.ScheduledRebalanceAt = now + delay
		return withMissing(workers, missingSet), sortedWorkerIds(missingSet.Slice())

	case maxDelayMillis <= 0:
		// Grace window disabled: evict missing workers at once.
		s.ScheduledRebalanceAt = 0
		s.CurrentDelayMillis = 0
		s.PreviousMembers = current
		return workers, nil

	default:
		// Case D: first observation of the missing set.
		s.CurrentDelayMillis = maxDelayMillis
		s.ScheduledRebalanceAt = now + maxDelayMillis
		return withMissing(workers, missingSet), sortedWorkerIds(missingSet.Slice())
	}
}

func withMissing(workers []WorkerId, missing *hashset.Set[WorkerId]) []WorkerId {
	out := append([]WorkerId(nil), workers...)
	out = append(out, missing.Slice()...)
	return sortedWorkerIds(out)
}
