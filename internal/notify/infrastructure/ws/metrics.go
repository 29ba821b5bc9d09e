package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "live_sessions",
	Help: "Number of currently registered live sessions.",
})
