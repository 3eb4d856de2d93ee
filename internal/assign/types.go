// Package assign implements the incremental cooperative rebalance core: the
// class-aware round-robin distributor and the diff engine that turn a
// leader's view of the group into per-worker start/stop sets.
package assign

import (
	"fmt"

	hashset "github.com/hashicorp/go-set/v3"
)

// ConnectorId identifies a configured connector. Its prefix determines its
// task-class layout; see classifyConnector.
type ConnectorId string

// WorkerId identifies a member of the group for one rebalance round.
type WorkerId string

// TaskId is one execution unit of a connector.
type TaskId struct {
	Connector ConnectorId
	Index     int
}

func (t TaskId) String() string {
	return fmt.Sprintf("%s-%d", t.Connector, t.Index)
}

// ProtocolVersion is the wire protocol version a member negotiated.
type ProtocolVersion int

const (
	ProtocolVersionV3 ProtocolVersion = 3
	ProtocolVersionV4 ProtocolVersion = 4
)

// AssignmentError is the sole error surface inside the assignment envelope.
type AssignmentError string

const (
	ErrNone           AssignmentError = "NO_ERROR"
	ErrConfigMismatch AssignmentError = "CONFIG_MISMATCH"
)

// ConnectorsAndTasks is an unordered pair of connector and task sets. The
// zero value is the distinguished empty value.
type ConnectorsAndTasks struct {
	Connectors *hashset.Set[ConnectorId]
	Tasks      *hashset.Set[TaskId]
}

// NewConnectorsAndTasks returns an empty, non-nil ConnectorsAndTasks.
func NewConnectorsAndTasks() ConnectorsAndTasks {
	return ConnectorsAndTasks{
		Connectors: hashset.New[ConnectorId](0),
		Tasks:      hashset.New[TaskId](0),
	}
}

func (c ConnectorsAndTasks) connectorsOrEmpty() *hashset.Set[ConnectorId] {
	if c.Connectors == nil {
		return hashset.New[ConnectorId](0)
	}
	return c.Connectors
}

func (c ConnectorsAndTasks) tasksOrEmpty() *hashset.Set[TaskId] {
	if c.Tasks == nil {
		return hashset.New[TaskId](0)
	}
	return c.Tasks
}

// Diff subtracts every other's connectors and tasks from c, returning a new
// ConnectorsAndTasks. c is left untouched.
func (c ConnectorsAndTasks) Diff(others ...ConnectorsAndTasks) ConnectorsAndTasks {
	connectors := c.connectorsOrEmpty().Copy()
	tasks := c.tasksOrEmpty().Copy()

	for _, o := range others {
		connectors = connectors.Difference(o.connectorsOrEmpty())
		tasks = tasks.Difference(o.tasksOrEmpty())
	}

	return ConnectorsAndTasks{Connectors: connectors, Tasks: tasks}
}

// Union returns the combination of c and others.
func (c ConnectorsAndTasks) Union(others ...ConnectorsAndTasks) ConnectorsAndTasks {
	connectors := c.connectorsOrEmpty().Copy()
	tasks := c.tasksOrEmpty().Copy()

	for _, o := range others {
		connectors = connectors.Union(o.connectorsOrEmpty())
		tasks = tasks.Union(o.tasksOrEmpty())
	}

	return ConnectorsAndTasks{Connectors: connectors, Tasks: tasks}
}

// Empty reports whether c carries no connectors and no tasks.
func (c ConnectorsAndTasks) Empty() bool {
	return c.connectorsOrEmpty().Empty() && c.tasksOrEmpty().Empty()
}

// Assignment is the per-member output of a rebalance round.
type Assignment struct {
	ProtocolVersion ProtocolVersion
	Error           AssignmentError

	LeaderId     WorkerId
	LeaderUrl    string
	ConfigOffset int64

	ConnectorsToStart []ConnectorId
	TasksToStart      []TaskId
	ConnectorsToStop  []ConnectorId
	TasksToStop       []TaskId

	// Connectors and Tasks are this member's full ownership once this
	// round's start/stop sets are applied. A member reports these back
	// verbatim as its PriorAssignment on its next join, which is how the
	// leader reconstructs currentAllocation without replaying history.
	Connectors []ConnectorId
	Tasks      []TaskId

	DelayMillis int64
}

// MemberMetadata is the per-worker record submitted to the leader.
type MemberMetadata struct {
	Url             string
	ConfigOffset    int64
	PriorAssignment Assignment
}

// Member pairs a WorkerId with the metadata it submitted this round. The
// leader receives members as a list (mirroring the group-membership wire
// protocol), not a map, so that a worker reported twice is detectable as
// malformed input rather than silently clobbered by a map key collision.
type Member struct {
	ID       WorkerId
	Metadata MemberMetadata
}

func allocationFromAssignment(a Assignment) ConnectorsAndTasks {
	out := NewConnectorsAndTasks()
	out.Connectors.InsertSlice(a.Connectors)
	out.Tasks.InsertSlice(a.Tasks)
	return out
}
