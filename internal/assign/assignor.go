package assign

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"sync"

	hashset "github.com/hashicorp/go-set/v3"
	multierror "github.com/hashicorp/go-multierror"
	uuid "github.com/hashicorp/go-uuid"
)

// Assignor is the stateful actor the group leader invokes once per
// rebalance round. It is single-threaded and non-reentrant; callers that
// cannot guarantee serialized invocation should wrap PerformAssignment with
// their own mutex, or rely on the one this type holds.
type Assignor struct {
	log            *log.Logger
	clock          Clock
	maxDelayMillis int64

	mu sync.Mutex

	scheduledRebalanceAt int64
	currentDelayMillis   int64
	previousGenerationId int
	previousMembers      *hashset.Set[WorkerId]
}

// AssignorOption configures an Assignor.
type AssignorOption func(*Assignor)

// WithAssignorLogger sets the logger used for decision-point logging.
// Defaults to a silent logger.
func WithAssignorLogger(l *log.Logger) AssignorOption {
	return func(a *Assignor) {
		a.log = l
	}
}

// NewAssignor returns a new Assignor. maxDelayMillis is the bound on the
// scheduled-rebalance grace window; 0 disables it.
func NewAssignor(clock Clock, maxDelayMillis int64, opts ...AssignorOption) *Assignor {
	a := &Assignor{
		log:                  log.New(ioutil.Discard, "", 0),
		clock:                clock,
		maxDelayMillis:       maxDelayMillis,
		previousGenerationId: -1,
		previousMembers:      hashset.New[WorkerId](0),
	}

	for _, o := range opts {
		o(a)
	}

	return a
}

// Round summarizes one PerformAssignment invocation for logging and the
// per-round metrics. It is never consulted for control flow.
type Round struct {
	ID             string
	WorkerCount    int
	MissingCount   int
	Started        int
	Stopped        int
	ConfigMismatch bool
	DelayMillis    int64
}

// PerformAssignment computes one Assignment per member of allMembers,
// following spec §4.1. allMembers must be non-empty; an empty workforce is
// a programmer error (no members means no leader would have been elected to
// call this).
func (a *Assignor) PerformAssignment(leaderID WorkerId, allMembers []Member, coordinator Coordinator) (map[WorkerId]Assignment, Round, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(allMembers) == 0 {
		return nil, Round{}, errors.New("assign: performAssignment called with no members")
	}
	if coordinator == nil {
		return nil, Round{}, errors.New("assign: nil coordinator")
	}

	roundID, err := uuid.GenerateUUID()
	if err != nil {
		roundID = "unknown-round"
	}
	round := Round{ID: roundID}

	members, err := dedupeMembers(allMembers)
	if err != nil {
		return nil, round, err
	}
	round.WorkerCount = len(members)

	maxOffset, protocolVersion := negotiate(members)
	now := a.clock.NowMillis()

	snapshot := coordinator.Snapshot()
	if snapshotOffset(snapshot) < maxOffset {
		a.log.Printf("[%s] leader snapshot stale (offset=%d, maxOffset=%d); requesting fresh snapshot", roundID, snapshotOffset(snapshot), maxOffset)
		snapshot = coordinator.FreshSnapshot()
		coordinator.SetSnapshot(snapshot)
	}
	if snapshotOffset(snapshot) < maxOffset {
		a.log.Printf("[%s] leader cannot safely assign: snapshot offset %d still behind member offset %d", roundID, snapshotOffset(snapshot), maxOffset)
		round.ConfigMismatch = true
		return configMismatchAssignments(members, maxOffset), round, nil
	}

	if a.previousGenerationId != coordinator.LastCompletedGenerationID() {
		a.log.Printf("[%s] generation mismatch (cached=%d, coordinator=%d); resetting carried delay state", roundID, a.previousGenerationId, coordinator.LastCompletedGenerationID())
		a.scheduledRebalanceAt = 0
		a.currentDelayMillis = 0
		a.previousMembers = hashset.New[WorkerId](0)
	}

	configured := snapshotConnectorsAndTasks(snapshot)

	currentAllocation := make(map[WorkerId]ConnectorsAndTasks, len(members))
	for _, m := range members {
		currentAllocation[m.ID] = allocationFromAssignment(m.Metadata.PriorAssignment)
	}

	workersInRound := sortedWorkerIds(memberIDs(members))

	currentSet := hashset.New[WorkerId](len(workersInRound))
	currentSet.InsertSlice(workersInRound)
	preMissing := a.previousMembers.Difference(currentSet)
	hadActiveDelay := a.scheduledRebalanceAt > 0

	delayState := &DelayState{
		ScheduledRebalanceAt: a.scheduledRebalanceAt,
		CurrentDelayMillis:   a.currentDelayMillis,
		PreviousMembers:      a.previousMembers,
	}
	workforce, missing := delayState.Resolve(workersInRound, now, a.maxDelayMillis)
	a.scheduledRebalanceAt = delayState.ScheduledRebalanceAt
	a.currentDelayMillis = delayState.CurrentDelayMillis
	a.previousMembers = delayState.PreviousMembers
	round.MissingCount = len(missing)
	round.DelayMillis = a.currentDelayMillis

	switch {
	case len(missing) > 0:
		a.log.Printf("[%s] missing workers held for this round: %v (delay=%dms, scheduledAt=%d)", roundID, missing, a.currentDelayMillis, a.scheduledRebalanceAt)
	case !preMissing.Empty():
		a.log.Printf("[%s] grace window expired; evicting missing workers %v", roundID, sortedWorkerIds(preMissing.Slice()))
	case hadActiveDelay:
		a.log.Printf("[%s] previously-missing workers rejoined before eviction", roundID)
	}

	sortedConnectors := sortedConnectorIds(configured.connectorsOrEmpty().Slice())
	sortedTasksAll := sortedTaskIds(configured.tasksOrEmpty().Slice())

	allGroups := buildAllGroups(sortedConnectors, sortedTasksAll)
	intermediate := dealGroups(workforce, allGroups)
	newTasksByWorker := applyContinuity(workforce, intermediate, currentAllocation)
	newConnectorsByWorker := dealConnectors(workforce, sortedConnectors)

	newAllocation := make(map[WorkerId]ConnectorsAndTasks, len(workforce))
	for _, w := range workforce {
		ca := NewConnectorsAndTasks()
		ca.Connectors.InsertSlice(newConnectorsByWorker[w])
		ca.Tasks.InsertSlice(newTasksByWorker[w])
		newAllocation[w] = ca
	}
	for _, w := range missing {
		delete(newAllocation, w)
		delete(newConnectorsByWorker, w)
		delete(newTasksByWorker, w)
	}

	toStart, toRevoke := ComputeDiff(currentAllocation, newAllocation, workersInRound)
	round.Started, round.Stopped = countDiff(toStart, toRevoke)

	result := make(map[WorkerId]Assignment, len(members))
	for _, m := range members {
		w := m.ID
		start := toStart[w]
		revoke := toRevoke[w]
		owned := newAllocation[w]

		result[w] = Assignment{
			ProtocolVersion:   protocolVersion,
			Error:             ErrNone,
			LeaderId:          leaderID,
			LeaderUrl:         leaderURL(members, leaderID),
			ConfigOffset:      maxOffset,
			ConnectorsToStart: sortedConnectorIds(start.connectorsOrEmpty().Slice()),
			TasksToStart:      sortedTaskIds(start.tasksOrEmpty().Slice()),
			ConnectorsToStop:  sortedConnectorIds(revoke.connectorsOrEmpty().Slice()),
			TasksToStop:       sortedTaskIds(revoke.tasksOrEmpty().Slice()),
			Connectors:        sortedConnectorIds(owned.connectorsOrEmpty().Slice()),
			Tasks:             sortedTaskIds(owned.tasksOrEmpty().Slice()),
			DelayMillis:       a.currentDelayMillis,
		}

		a.log.Printf("[%s] %s: start=%d/%d stop=%d/%d", roundID, w, len(result[w].ConnectorsToStart), len(result[w].TasksToStart), len(result[w].ConnectorsToStop), len(result[w].TasksToStop))
	}

	coordinator.SetLeaderState(metadataByWorker(members), newConnectorsByWorker, newTasksByWorker)
	a.previousGenerationId = coordinator.GenerationID()

	return result, round, nil
}

func negotiate(members []Member) (maxOffset int64, protocolVersion ProtocolVersion) {
	allV4 := true
	for _, m := range members {
		if m.Metadata.ConfigOffset > maxOffset {
			maxOffset = m.Metadata.ConfigOffset
		}
		if m.Metadata.PriorAssignment.ProtocolVersion != ProtocolVersionV4 {
			allV4 = false
		}
	}
	if allV4 {
		return maxOffset, ProtocolVersionV4
	}
	return maxOffset, ProtocolVersionV3
}

func dedupeMembers(allMembers []Member) ([]Member, error) {
	seen := make(map[WorkerId]bool, len(allMembers))
	var errs *multierror.Error
	out := make([]Member, 0, len(allMembers))

	for _, m := range allMembers {
		if seen[m.ID] {
			errs = multierror.Append(errs, fmt.Errorf("assign: duplicate member metadata for worker %q", m.ID))
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}

	return out, errs.ErrorOrNil()
}

func memberIDs(members []Member) []WorkerId {
	out := make([]WorkerId, 0, len(members))
	for _, m := range members {
		out = append(out, m.ID)
	}
	return out
}

func metadataByWorker(members []Member) map[WorkerId]MemberMetadata {
	out := make(map[WorkerId]MemberMetadata, len(members))
	for _, m := range members {
		out[m.ID] = m.Metadata
	}
	return out
}

func leaderURL(members []Member, leaderID WorkerId) string {
	for _, m := range members {
		if m.ID == leaderID {
			return m.Metadata.Url
		}
	}
	return ""
}

func configMismatchAssignments(members []Member, maxOffset int64) map[WorkerId]Assignment {
	out := make(map[WorkerId]Assignment, len(members))
	for _, m := range members {
		out[m.ID] = Assignment{
			Error:        ErrConfigMismatch,
			ConfigOffset: maxOffset,
		}
	}
	return out
}

func countDiff(toStart, toRevoke map[WorkerId]ConnectorsAndTasks) (started, stopped int) {
	for _, s := range toStart {
		started += s.tasksOrEmpty().Size()
	}
	for _, s := range toRevoke {
		stopped += s.tasksOrEmpty().Size()
	}
	return started, stopped
}
