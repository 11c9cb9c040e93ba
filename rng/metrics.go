package rng

import (
	"github.com/VictoriaMetrics/metrics"
)

var (
	entropyEventsTotal = metrics.NewCounter("fortuna_entropy_events_total")
	reseedsTotal       = metrics.NewCounter("fortuna_reseeds_total")
	randomBytesTotal   = metrics.NewCounter("fortuna_random_bytes_total")
)
