package assign_test

import (
	. "code.cloudfoundry.org/connect-assignor/internal/assign"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Diff Engine", func() {
	It("computes per-worker start and revoke sets", func() {
		current := map[WorkerId]ConnectorsAndTasks{
			"A": tasksOnly(TaskId{Connector: "c", Index: 0}),
			"B": tasksOnly(TaskId{Connector: "c", Index: 1}),
		}
		next := map[WorkerId]ConnectorsAndTasks{
			"A": tasksOnly(TaskId{Connector: "c", Index: 1}),
			"B": tasksOnly(TaskId{Connector: "c", Index: 0}),
		}

		toStart, toRevoke := ComputeDiff(current, next, []WorkerId{"A", "B"})

		Expect(toRevoke["A"].Tasks.Slice()).To(ConsistOf(TaskId{Connector: "c", Index: 0}))
		Expect(toRevoke["B"].Tasks.Slice()).To(ConsistOf(TaskId{Connector: "c", Index: 1}))

		// I4: task 0 is revoked from A this round, so it cannot appear in
		// B's start set even though B's new allocation names it.
		Expect(toStart["B"].Tasks.Empty()).To(BeTrue())
		Expect(toStart["A"].Tasks.Empty()).To(BeTrue())
	})

	It("starts a task with no current owner and no concurrent revocation", func() {
		current := map[WorkerId]ConnectorsAndTasks{
			"A": NewConnectorsAndTasks(),
		}
		next := map[WorkerId]ConnectorsAndTasks{
			"A": tasksOnly(TaskId{Connector: "c", Index: 0}),
		}

		toStart, toRevoke := ComputeDiff(current, next, []WorkerId{"A"})

		Expect(toStart["A"].Tasks.Slice()).To(ConsistOf(TaskId{Connector: "c", Index: 0}))
		Expect(toRevoke["A"].Tasks.Empty()).To(BeTrue())
	})

	It("produces no diff for an unchanged allocation", func() {
		alloc := tasksOnly(TaskId{Connector: "c", Index: 0})
		current := map[WorkerId]ConnectorsAndTasks{"A": alloc}
		next := map[WorkerId]ConnectorsAndTasks{"A": alloc}

		toStart, toRevoke := ComputeDiff(current, next, []WorkerId{"A"})

		Expect(toStart["A"].Empty()).To(BeTrue())
		Expect(toRevoke["A"].Empty()).To(BeTrue())
	})
})

func tasksOnly(tasks ...TaskId) ConnectorsAndTasks {
	ca := NewConnectorsAndTasks()
	ca.Tasks.InsertSlice(tasks)
	return ca
}
