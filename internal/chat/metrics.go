package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var divertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_orchestrator_diverts_total",
	Help: "Total number of chat sessions that transitioned into the diverted (honeypot) state, by trigger",
}, []string{"trigger"})

func recordDivert(trigger string) {
	divertsTotal.WithLabelValues(trigger).Inc()
}
