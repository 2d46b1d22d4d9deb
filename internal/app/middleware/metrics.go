package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// gateDecisions counts gate outcomes by decision tag, so redirect
// storms and token failures show up on the dashboard.
var gateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ppk_portal",
	Subsystem: "gate",
	Name:      "decisions_total",
	Help:      "Request gate decisions by outcome tag.",
}, []string{"tag"})
