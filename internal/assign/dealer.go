package assign

// buildAllGroups interleaves every connector's class groups, outer loop by
// class number (1..4), inner loop by connector in ascending order. Each
// group is appended once per task it holds, so it gets exactly size()
// chances in the round-robin below. connectors must already be sorted.
func buildAllGroups(connectors []ConnectorId, configuredTasks []TaskId) []*TaskGroup {
	var allGroups []*TaskGroup
	for classNumber := 1; classNumber <= 4; classNumber++ {
		for _, c := range connectors {
			g := taskGroup(c, configuredTasks, classNumber)
			if g == nil {
				continue
			}
			for i := 0; i < g.Size(); i++ {
				allGroups = append(allGroups, g)
			}
		}
	}
	return allGroups
}

// dealGroups deals allGroups round-robin to workers, which must already be
// sorted ascending. Each worker's slice may contain repeated appearances of
// the same *TaskGroup.
func dealGroups(workers []WorkerId, allGroups []*TaskGroup) map[WorkerId][]*TaskGroup {
	intermediate := make(map[WorkerId][]*TaskGroup, len(workers))
	for _, w := range workers {
		intermediate[w] = nil
	}
	if len(workers) == 0 {
		return intermediate
	}
	for i, g := range allGroups {
		w := workers[i%len(workers)]
		intermediate[w] = append(intermediate[w], g)
	}
	return intermediate
}

// dealConnectors is plain round-robin of connectors over sorted workers.
func dealConnectors(workers []WorkerId, connectors []ConnectorId) map[WorkerId][]ConnectorId {
	out := make(map[WorkerId][]ConnectorId, len(workers))
	for _, w := range workers {
		out[w] = nil
	}
	if len(workers) == 0 {
		return out
	}
	for i, c := range connectors {
		w := workers[i%len(workers)]
		out[w] = append(out[w], c)
	}
	return out
}
