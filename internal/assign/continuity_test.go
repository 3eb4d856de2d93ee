package assign

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Continuity Filter", func() {
	It("keeps a worker's current task when a dealt group still holds it", func() {
		groupA := &TaskGroup{Connector: "c", indices: []int{0, 1, 2, 3}}
		intermediate := map[WorkerId][]*TaskGroup{
			"A": {groupA, groupA},
			"B": {groupA, groupA},
		}
		current := map[WorkerId]ConnectorsAndTasks{
			"A": allocationOf([]TaskId{{Connector: "c", Index: 2}}),
		}

		newTasks := applyContinuity([]WorkerId{"A", "B"}, intermediate, current)

		Expect(newTasks["A"]).To(ContainElement(TaskId{Connector: "c", Index: 2}))
		Expect(groupA.Contains(TaskId{Connector: "c", Index: 2})).To(BeFalse())
	})

	It("drops a currently-owned task that no dealt group contains anymore", func() {
		groupA := &TaskGroup{Connector: "c", indices: []int{0, 1}}
		intermediate := map[WorkerId][]*TaskGroup{
			"A": {groupA},
		}
		current := map[WorkerId]ConnectorsAndTasks{
			"A": allocationOf([]TaskId{{Connector: "other", Index: 9}}),
		}

		newTasks := applyContinuity([]WorkerId{"A"}, intermediate, current)

		Expect(newTasks["A"]).NotTo(ContainElement(TaskId{Connector: "other", Index: 9}))
	})

	It("fills remaining group appearances front-to-back after the retention pass", func() {
		groupA := &TaskGroup{Connector: "c", indices: []int{0, 1, 2}}
		intermediate := map[WorkerId][]*TaskGroup{
			"A": {groupA, groupA, groupA},
		}
		current := map[WorkerId]ConnectorsAndTasks{
			"A": allocationOf([]TaskId{{Connector: "c", Index: 2}}),
		}

		newTasks := applyContinuity([]WorkerId{"A"}, intermediate, current)

		Expect(newTasks["A"]).To(ConsistOf(
			TaskId{Connector: "c", Index: 2},
			TaskId{Connector: "c", Index: 0},
			TaskId{Connector: "c", Index: 1},
		))
	})

	It("is a no-op for a worker with no prior allocation", func() {
		groupA := &TaskGroup{Connector: "c", indices: []int{0}}
		intermediate := map[WorkerId][]*TaskGroup{
			"A": {groupA},
		}

		newTasks := applyContinuity([]WorkerId{"A"}, intermediate, map[WorkerId]ConnectorsAndTasks{})

		Expect(newTasks["A"]).To(Equal([]TaskId{TaskId{Connector: "c", Index: 0}}))
	})
})

func allocationOf(tasks []TaskId) ConnectorsAndTasks {
	ca := NewConnectorsAndTasks()
	ca.Tasks.InsertSlice(tasks)
	return ca
}
