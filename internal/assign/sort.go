package assign

import "sort"

// All round-robin and output iteration is ascending-sorted by natural
// order so results are deterministic for identical inputs; maps used for
// lookup carry no ordering contract of their own.

func sortedWorkerIds(in []WorkerId) []WorkerId {
	out := append([]WorkerId(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedConnectorIds(in []ConnectorId) []ConnectorId {
	out := append([]ConnectorId(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedTaskIds(in []TaskId) []TaskId {
	out := append([]TaskId(nil), in...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Connector != out[j].Connector {
			return out[i].Connector < out[j].Connector
		}
		return out[i].Index < out[j].Index
	})
	return out
}
