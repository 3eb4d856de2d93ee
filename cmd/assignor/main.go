package main

import (
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	envstruct "code.cloudfoundry.org/go-envstruct"

	"code.cloudfoundry.org/connect-assignor/internal/assign"
	"code.cloudfoundry.org/connect-assignor/internal/coordinator"
	"code.cloudfoundry.org/connect-assignor/internal/leaderstatus"
	"code.cloudfoundry.org/connect-assignor/internal/metrics"
	. "code.cloudfoundry.org/connect-assignor/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	log.Print("Starting Connect Assignor...")
	defer log.Print("Closing Connect Assignor.")

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %s", err)
	}

	envstruct.WriteReport(cfg)

	logger := log.New(os.Stderr, "", log.LstdFlags)
	metricsMap := metrics.New(expvar.NewMap("ConnectAssignor"))

	var fetcherOpts []coordinator.FetcherOption
	fetcherOpts = append(fetcherOpts, coordinator.WithFetcherLogger(logger))
	if cfg.TLS.HasAnyCredential() {
		tlsConfig, err := cfg.TLS.ClientConfig("connect-assignor")
		if err != nil {
			log.Fatalf("invalid TLS configuration: %s", err)
		}
		fetcherOpts = append(fetcherOpts, coordinator.WithFetcherTLSConfig(tlsConfig))
	}
	fetcher := coordinator.NewFetcher(cfg.SnapshotURL, fetcherOpts...)

	statusStore := leaderstatus.NewStore()

	coord := coordinator.NewCoordinator(
		assign.WorkerId(cfg.MemberID),
		fetcher,
		coordinator.WithCoordinatorLogger(logger),
		coordinator.WithLeaderStateSink(statusStore),
	)

	assignor := assign.NewAssignor(
		assign.SystemClock{},
		cfg.MaxDelayMillis,
		assign.WithAssignorLogger(logger),
	)

	source := &httpMemberSource{url: cfg.GroupMembersURL, client: http.DefaultClient, log: logger}
	publisher := &httpPublisher{url: cfg.GroupPublishURL, client: http.DefaultClient, log: logger}

	startedCounter := metricsMap.NewCounter("TasksStarted")
	stoppedCounter := metricsMap.NewCounter("TasksStopped")
	delayGauge := metricsMap.NewGauge("CurrentDelayMillis")

	opts := []SchedulerOption{
		WithSchedulerLogger(logger),
		WithSchedulerInterval(cfg.Interval),
	}

	if cfg.LeaderElectionEndpoint != "" {
		opts = append(opts, WithSchedulerLeadership(func() bool {
			resp, err := http.Get(cfg.LeaderElectionEndpoint)
			if err != nil {
				logger.Printf("failed to read from leadership endpoint: %s", err)
				return false
			}
			defer resp.Body.Close()

			return resp.StatusCode == http.StatusOK
		}))
	}

	sched := NewScheduler(assignor, coord, source, meteredPublisher{
		Publisher: publisher,
		started:   startedCounter,
		stopped:   stoppedCounter,
		delay:     delayGauge,
	}, opts...)

	sched.Start()

	go func() {
		logger.Printf("status: %s", http.ListenAndServe(cfg.StatusAddr, leaderstatus.NewRouter(statusStore)))
	}()

	if cfg.MetricsServer.Enabled() {
		metricsTLSConfig, err := cfg.MetricsServer.TLSConfig()
		if err != nil {
			log.Fatalf("invalid metrics TLS configuration: %s", err)
		}

		go func() {
			addr := fmt.Sprintf(":%d", cfg.MetricsServer.Port)
			logger.Printf("metrics: %s", metrics.Server(addr, metricsTLSConfig))
		}()
	}

	// health endpoints (pprof and expvar)
	log.Printf("Health: %s", http.ListenAndServe(cfg.HealthAddr, nil))
}

// meteredPublisher wraps a Publisher to additionally record per-round
// counters and the active delay gauge before forwarding results.
type meteredPublisher struct {
	Publisher
	started func(uint64)
	stopped func(uint64)
	delay   func(float64)
}

func (m meteredPublisher) Publish(result map[assign.WorkerId]assign.Assignment, round assign.Round) {
	m.started(uint64(round.Started))
	m.stopped(uint64(round.Stopped))
	m.delay(float64(round.DelayMillis))
	m.Publisher.Publish(result, round)
}
