// Package metrics defines the application's Prometheus collectors. They are
// registered on the default registry that fiberprometheus serves at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Render outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	// Renders counts resource render requests by outcome.
	Renders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bootmgr",
		Name:      "renders_total",
		Help:      "Resource render requests by outcome.",
	}, []string{"outcome"})

	// OverridesConsumed counts one-shot overrides deleted by a render.
	OverridesConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bootmgr",
		Name:      "overrides_consumed_total",
		Help:      "One-shot alias overrides consumed by a render.",
	})

	// HostsCreated counts hosts created through bulk creation.
	HostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bootmgr",
		Name:      "hosts_created_total",
		Help:      "Hosts created.",
	})
)
