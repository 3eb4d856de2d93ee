package assign

import (
	hashset "github.com/hashicorp/go-set/v3"
)

// ComputeDiff computes per-worker toStart/toRevoke sets from current to new
// allocations, then post-filters toStart by removing anything present in
// any worker's toRevoke set (invariant I4: a revocation in this round is
// never started again in the same round).
func ComputeDiff(current, next map[WorkerId]ConnectorsAndTasks, workers []WorkerId) (toStart, toRevoke map[WorkerId]ConnectorsAndTasks) {
	toRevoke = make(map[WorkerId]ConnectorsAndTasks, len(workers))
	toStart = make(map[WorkerId]ConnectorsAndTasks, len(workers))

	for _, w := range workers {
		cur := current[w]
		neu := next[w]
		toRevoke[w] = cur.Diff(neu)
		toStart[w] = neu.Diff(cur)
	}

	revokedConnectors := hashset.New[ConnectorId](0)
	revokedTasks := hashset.New[TaskId](0)
	for _, r := range toRevoke {
		revokedConnectors = revokedConnectors.Union(r.connectorsOrEmpty())
		revokedTasks = revokedTasks.Union(r.tasksOrEmpty())
	}

	for w, s := range toStart {
		toStart[w] = ConnectorsAndTasks{
			Connectors: s.connectorsOrEmpty().Difference(revokedConnectors),
			Tasks:      s.tasksOrEmpty().Difference(revokedTasks),
		}
	}

	return toStart, toRevoke
}
