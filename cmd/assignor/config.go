package main

import (
	"time"

	envstruct "code.cloudfoundry.org/go-envstruct"

	"code.cloudfoundry.org/connect-assignor/internal/config"
	"code.cloudfoundry.org/connect-assignor/internal/tls"
)

// Config is the configuration for an assignor process.
type Config struct {
	HealthAddr string `env:"HEALTH_ADDR, report"`

	// MemberID is this process's own WorkerId within the group.
	MemberID string `env:"MEMBER_ID, report, required"`

	// SnapshotURL is the configuration-snapshot endpoint the Coordinator
	// reads configured connectors and tasks from.
	SnapshotURL string `env:"SNAPSHOT_URL, report, required"`

	// GroupMembersURL and GroupPublishURL are the group-membership
	// endpoints this process polls as leader and posts results back to.
	GroupMembersURL string `env:"GROUP_MEMBERS_URL, report, required"`
	GroupPublishURL string `env:"GROUP_PUBLISH_URL, report, required"`

	// StatusAddr serves the leader's current per-worker allocation view.
	StatusAddr string `env:"STATUS_ADDR, report"`

	Interval       time.Duration `env:"INTERVAL, report"`
	MaxDelayMillis int64         `env:"MAX_DELAY_MILLIS, report"`

	// If empty, this process assumes it is always the leader.
	LeaderElectionEndpoint string `env:"LEADER_ELECTION_ENDPOINT, report"`

	TLS tls.TLS

	// MetricsServer, when its Port is non-zero, additionally exposes
	// expvar metrics over a separate mutual-TLS listener; the
	// unauthenticated pprof/health endpoint serves them as well.
	MetricsServer config.MetricsServer
}

// LoadConfig creates a Config from environment variables.
func LoadConfig() (*Config, error) {
	c := Config{
		HealthAddr:     "localhost:6064",
		StatusAddr:     "localhost:6065",
		Interval:       time.Minute,
		MaxDelayMillis: 300000,
	}

	if err := envstruct.Load(&c); err != nil {
		return nil, err
	}

	return &c, nil
}
