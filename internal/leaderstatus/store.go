// Package leaderstatus exposes the current leader's view of per-worker
// connector and task ownership over HTTP, for operator tooling and
// dashboards external to the group protocol itself.
package leaderstatus

import (
	"sort"
	"sync"

	"code.cloudfoundry.org/connect-assignor/internal/assign"
)

// Store holds the most recently published leader state. It is safe for
// concurrent use: one rebalance round writes while any number of status
// requests read.
type Store struct {
	mu sync.RWMutex

	memberConfigs map[assign.WorkerId]assign.MemberMetadata
	connectors    map[assign.WorkerId][]assign.ConnectorId
	tasks         map[assign.WorkerId][]assign.TaskId
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the published leader state. It implements
// coordinator.LeaderStateSink.
func (s *Store) Set(
	memberConfigs map[assign.WorkerId]assign.MemberMetadata,
	connectors map[assign.WorkerId][]assign.ConnectorId,
	tasks map[assign.WorkerId][]assign.TaskId,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memberConfigs = memberConfigs
	s.connectors = connectors
	s.tasks = tasks
}

// MemberStatus is the per-worker view rendered by the status endpoint.
type MemberStatus struct {
	Url          string   `json:"url"`
	ConfigOffset int64    `json:"config_offset"`
	Connectors   []string `json:"connectors"`
	Tasks        []string `json:"tasks"`
}

// Snapshot renders the current leader state as a stable, JSON-friendly map
// keyed by worker id.
func (s *Store) Snapshot() map[string]MemberStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]MemberStatus, len(s.memberConfigs))
	for w, meta := range s.memberConfigs {
		out[string(w)] = MemberStatus{
			Url:          meta.Url,
			ConfigOffset: meta.ConfigOffset,
			Connectors:   connectorStrings(s.connectors[w]),
			Tasks:        taskStrings(s.tasks[w]),
		}
	}
	return out
}

func connectorStrings(in []assign.ConnectorId) []string {
	out := make([]string, len(in))
	for i, c := range in {
		out[i] = string(c)
	}
	sort.Strings(out)
	return out
}

func taskStrings(in []assign.TaskId) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = t.String()
	}
	sort.Strings(out)
	return out
}
