package scheduler_test

import (
	"sync"
	"time"

	"code.cloudfoundry.org/connect-assignor/internal/assign"
	. "code.cloudfoundry.org/connect-assignor/internal/scheduler"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Scheduler", func() {
	var (
		s *Scheduler

		sourceSpy      *spySource
		publisherSpy   *spyPublisher
		coordinatorSpy *spyCoordinator
		leadershipSpy  *spyLeadership
	)

	BeforeEach(func() {
		sourceSpy = newSpySource()
		publisherSpy = newSpyPublisher()
		coordinatorSpy = newSpyCoordinator()
		leadershipSpy = newSpyLeadership(true)

		assignor := assign.NewAssignor(fixedClock{}, 300000)

		s = NewScheduler(
			assignor,
			coordinatorSpy,
			sourceSpy,
			publisherSpy,
			WithSchedulerInterval(time.Millisecond),
			WithSchedulerLeadership(leadershipSpy.IsLeader),
		)
	})

	It("publishes a round's results when leader and membership is available", func() {
		sourceSpy.setMembers([]assign.Member{
			{ID: "A"},
			{ID: "B"},
		})

		s.Start()

		Eventually(publisherSpy.publishCount).Should(BeNumerically(">", 0))
	})

	It("does not run a round when not the leader", func() {
		leadershipSpy.setResult(false)
		sourceSpy.setMembers([]assign.Member{{ID: "A"}})

		s.Start()

		Consistently(publisherSpy.publishCount).Should(Equal(0))
	})

	It("skips a round when membership is empty", func() {
		sourceSpy.setMembers(nil)

		s.Start()

		Consistently(publisherSpy.publishCount).Should(Equal(0))
	})
})

type fixedClock struct{}

func (fixedClock) NowMillis() int64 { return 0 }

type spySource struct {
	mu      sync.Mutex
	members []assign.Member
}

func newSpySource() *spySource {
	return &spySource{}
}

func (s *spySource) Members() ([]assign.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]assign.Member, len(s.members))
	copy(out, s.members)
	return out, nil
}

func (s *spySource) setMembers(m []assign.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = m
}

type spyPublisher struct {
	mu    sync.Mutex
	count int
}

func newSpyPublisher() *spyPublisher {
	return &spyPublisher{}
}

func (p *spyPublisher) Publish(result map[assign.WorkerId]assign.Assignment, round assign.Round) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
}

func (p *spyPublisher) publishCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

type spyCoordinator struct {
	snapshot *spySnapshot
}

func newSpyCoordinator() *spyCoordinator {
	return &spyCoordinator{snapshot: &spySnapshot{}}
}

func (c *spyCoordinator) GenerationID() int                    { return 1 }
func (c *spyCoordinator) LastCompletedGenerationID() int       { return 1 }
func (c *spyCoordinator) MemberID() assign.WorkerId             { return "leader" }
func (c *spyCoordinator) Snapshot() assign.ConfigSnapshot       { return c.snapshot }
func (c *spyCoordinator) FreshSnapshot() assign.ConfigSnapshot  { return c.snapshot }
func (c *spyCoordinator) SetSnapshot(assign.ConfigSnapshot)     {}

func (c *spyCoordinator) SetLeaderState(
	map[assign.WorkerId]assign.MemberMetadata,
	map[assign.WorkerId][]assign.ConnectorId,
	map[assign.WorkerId][]assign.TaskId,
) {
}

type spySnapshot struct{}

func (s *spySnapshot) Offset() int64                           { return 0 }
func (s *spySnapshot) Connectors() []assign.ConnectorId         { return nil }
func (s *spySnapshot) Tasks(assign.ConnectorId) []assign.TaskId { return nil }

type spyLeadership struct {
	mu     sync.Mutex
	result bool
}

func newSpyLeadership(result bool) *spyLeadership {
	return &spyLeadership{result: result}
}

func (s *spyLeadership) IsLeader() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *spyLeadership) setResult(b bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = b
}
