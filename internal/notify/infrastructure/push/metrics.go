package push

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pushesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_sends_total",
		Help: "Total number of successful push gateway sends.",
	})

	pushFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "push_failures_total",
		Help: "Total number of failed push gateway sends by failure class.",
	}, []string{"reason"})

	tokensPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_tokens_pruned_total",
		Help: "Total number of device tokens removed after the gateway reported them invalid.",
	})
)
