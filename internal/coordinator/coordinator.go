package coordinator

import (
	"io/ioutil"
	"log"
	"sync"

	"code.cloudfoundry.org/connect-assignor/internal/assign"
)

// LeaderStateSink receives the per-round publication the Assignor hands to
// the coordinator once an assignment has been computed. Consumed, not
// implemented, by this package; internal/leaderstatus provides one.
type LeaderStateSink interface {
	Set(
		memberConfigs map[assign.WorkerId]assign.MemberMetadata,
		connectors map[assign.WorkerId][]assign.ConnectorId,
		tasks map[assign.WorkerId][]assign.TaskId,
	)
}

// Coordinator is the concrete assign.Coordinator cmd/assignor wires up: it
// caches the last fetched Snapshot, re-fetches over HTTP on request, and
// forwards published leader state to an optional status sink.
type Coordinator struct {
	mu sync.Mutex

	memberID assign.WorkerId
	fetcher  *Fetcher
	log      *log.Logger

	cached *Snapshot

	generationID              int
	lastCompletedGenerationID int

	sink LeaderStateSink
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger sets the logger used to report refresh failures.
func WithCoordinatorLogger(l *log.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.log = l
	}
}

// WithLeaderStateSink forwards every SetLeaderState call to sink, e.g. a
// leaderstatus.Store backing a status HTTP endpoint.
func WithLeaderStateSink(sink LeaderStateSink) CoordinatorOption {
	return func(c *Coordinator) {
		c.sink = sink
	}
}

// NewCoordinator returns a new Coordinator. memberID is this process's own
// WorkerId within the group.
func NewCoordinator(memberID assign.WorkerId, fetcher *Fetcher, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		memberID:                  memberID,
		fetcher:                   fetcher,
		log:                       log.New(ioutil.Discard, "", 0),
		lastCompletedGenerationID: -1,
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// GenerationID returns the generation the group-membership layer most
// recently assigned this process.
func (c *Coordinator) GenerationID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generationID
}

// LastCompletedGenerationID returns the last generation that completed a
// full rebalance successfully.
func (c *Coordinator) LastCompletedGenerationID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCompletedGenerationID
}

// MemberID returns this process's WorkerId.
func (c *Coordinator) MemberID() assign.WorkerId {
	return c.memberID
}

// Snapshot returns the cached snapshot, fetching once if none has been
// cached yet.
func (c *Coordinator) Snapshot() assign.ConfigSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached == nil {
		c.cached = c.fetchLocked()
	}
	return c.cached
}

// FreshSnapshot forces a refresh from the configuration-snapshot endpoint.
// On fetch failure the prior cached snapshot is returned unchanged and the
// failure is logged; the Assignor's leader-freshness check will simply see
// the same (stale) offset again and report CONFIG_MISMATCH if appropriate.
func (c *Coordinator) FreshSnapshot() assign.ConfigSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fresh := c.fetchLocked(); fresh != nil {
		c.cached = fresh
	}
	return c.cached
}

func (c *Coordinator) fetchLocked() *Snapshot {
	snap, err := c.fetcher.Fetch()
	if err != nil {
		c.log.Printf("coordinator: refresh failed: %s", err)
		return nil
	}
	return snap
}

// SetSnapshot overwrites the cached snapshot, e.g. after an external push
// notification delivers a fresher one out of band.
func (c *Coordinator) SetSnapshot(s assign.ConfigSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, ok := s.(*Snapshot)
	if !ok {
		return
	}
	c.cached = snap
}

// SetLeaderState forwards the round's per-member allocation to the
// configured sink, if any.
func (c *Coordinator) SetLeaderState(
	memberConfigs map[assign.WorkerId]assign.MemberMetadata,
	connectors map[assign.WorkerId][]assign.ConnectorId,
	tasks map[assign.WorkerId][]assign.TaskId,
) {
	if c.sink == nil {
		return
	}
	c.sink.Set(memberConfigs, connectors, tasks)
}

// CompleteGeneration records that generation id completed a full rebalance
// round, advancing the value the next round's generation-continuity check
// compares against. Called by the enclosing group-membership layer once it
// observes a successful term, not by the Assignor itself.
func (c *Coordinator) CompleteGeneration(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCompletedGenerationID = id
}

// SetGenerationID records the generation the group-membership layer has
// most recently assigned this process.
func (c *Coordinator) SetGenerationID(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generationID = id
}
