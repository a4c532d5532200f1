package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK      = "ok"
	outcomeRetried = "retried"
	outcomeDropped = "dropped"
	outcomePanic   = "panic"
)

var (
	// TasksTotal counts finished task executions by kind and outcome.
	TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghcrawler_tasks_total",
		Help: "The total number of executed crawl tasks.",
	}, []string{"kind", "outcome"})
	// TasksInFlight tracks tasks pulled by a worker and not yet acknowledged.
	TasksInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ghcrawler_tasks_inflight",
		Help: "The number of crawl tasks currently executing.",
	})
	// TargetsDiscovered counts targets found by search tasks.
	TargetsDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ghcrawler_targets_discovered_total",
		Help: "The total number of result pages discovered by search tasks.",
	})
)
