package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// loginAttempts counts login outcomes by result class.
var loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ppk_portal",
	Subsystem: "auth",
	Name:      "login_attempts_total",
	Help:      "Login attempts by outcome.",
}, []string{"outcome"})
