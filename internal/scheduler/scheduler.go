// Package scheduler drives the rebalance core once per tick on whichever
// process currently holds group leadership.
package scheduler

import (
	"io/ioutil"
	"log"
	"time"

	"code.cloudfoundry.org/connect-assignor/internal/assign"
)

// MemberSource supplies the current view of group membership for one round.
// Consumed, not implemented, by this package.
type MemberSource interface {
	Members() ([]assign.Member, error)
}

// Publisher delivers one round's computed assignments back to the group,
// e.g. by encoding and sending them over the group-membership wire
// protocol. Consumed, not implemented, by this package.
type Publisher interface {
	Publish(result map[assign.WorkerId]assign.Assignment, round assign.Round)
}

// Scheduler runs the Assignor on an interval whenever this process is the
// elected group leader.
type Scheduler struct {
	log      *log.Logger
	interval time.Duration
	isLeader func() bool

	assignor    *assign.Assignor
	coordinator assign.Coordinator
	source      MemberSource
	publisher   Publisher
}

// NewScheduler returns a new Scheduler.
func NewScheduler(
	assignor *assign.Assignor,
	coordinator assign.Coordinator,
	source MemberSource,
	publisher Publisher,
	opts ...SchedulerOption,
) *Scheduler {
	s := &Scheduler{
		log:         log.New(ioutil.Discard, "", 0),
		interval:    time.Minute,
		isLeader:    func() bool { return true },
		assignor:    assignor,
		coordinator: coordinator,
		source:      source,
		publisher:   publisher,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger returns a SchedulerOption that configures the logger
// used for the Scheduler. Defaults to a silent logger.
func WithSchedulerLogger(l *log.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.log = l
	}
}

// WithSchedulerInterval returns a SchedulerOption that configures the
// interval between rebalance rounds. It defaults to a minute.
func WithSchedulerInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.interval = interval
	}
}

// WithSchedulerLeadership sets the leadership decision function that
// returns true if this node is the current group leader. Defaults to a
// function that always returns true.
func WithSchedulerLeadership(isLeader func() bool) SchedulerOption {
	return func(s *Scheduler) {
		s.isLeader = isLeader
	}
}

// Start starts the Scheduler. It does not block.
func (s *Scheduler) Start() {
	go func() {
		// Waits until after the first run of the loop to read from t:
		// https://groups.google.com/forum/m/#!topic/golang-nuts/H_55uzPp98s
		for t := time.Tick(s.interval); ; <-t {
			if !s.isLeader() {
				continue
			}

			s.runRound()
		}
	}()
}

func (s *Scheduler) runRound() {
	members, err := s.source.Members()
	if err != nil {
		s.log.Printf("failed to read group membership: %s", err)
		return
	}
	if len(members) == 0 {
		return
	}

	result, round, err := s.assignor.PerformAssignment(s.coordinator.MemberID(), members, s.coordinator)
	if err != nil {
		s.log.Printf("assignment round failed: %s", err)
		return
	}

	s.publisher.Publish(result, round)
}
