package honeypot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSessionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "honeypot_active_sessions",
		Help: "Number of honeypot sessions currently held in memory",
	})

	callbacksSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "honeypot_callbacks_sent_total",
		Help: "Total number of honeypot sessions for which the external callback was successfully delivered",
	})
)
