package assign

// applyContinuity places concrete task ids onto workers. For each worker's
// currently-owned tasks, it walks that worker's dealt groups in order and
// keeps the task in the first group still holding it (first-match-wins,
// then continues with the worker's next currently-owned task). Remaining
// group appearances are then popped front-to-back to fill what's left.
//
// workers and each worker's intermediate group list must already be in
// their dealt order; currentAllocation need only carry entries for workers
// that currently own something.
func applyContinuity(
	workers []WorkerId,
	intermediate map[WorkerId][]*TaskGroup,
	currentAllocation map[WorkerId]ConnectorsAndTasks,
) map[WorkerId][]TaskId {
	newTasks := make(map[WorkerId][]TaskId, len(workers))

	for _, w := range workers {
		groups := intermediate[w]
		cur, ok := currentAllocation[w]
		if !ok {
			continue
		}

		for _, t := range sortedTaskIds(cur.tasksOrEmpty().Slice()) {
			for gi, g := range groups {
				if !g.Contains(t) {
					continue
				}
				g.Remove(t)
				groups = append(groups[:gi], groups[gi+1:]...)
				newTasks[w] = append(newTasks[w], t)
				break
			}
		}

		intermediate[w] = groups
	}

	for _, w := range workers {
		for _, g := range intermediate[w] {
			if t, ok := g.PopFront(); ok {
				newTasks[w] = append(newTasks[w], t)
			}
		}
	}

	return newTasks
}
