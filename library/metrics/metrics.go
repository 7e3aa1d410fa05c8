// Package metrics holds the prometheus collectors of the site.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ContentMutations counts admin writes by collection and operation.
	ContentMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "amc", Name: "content_mutations_total", Help: "Number of content writes by collection and operation."},
		[]string{"collection", "op"},
	)
	// Uploads counts object storage uploads by prefix and result.
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "amc", Name: "uploads_total", Help: "Number of object storage uploads by prefix and result."},
		[]string{"prefix", "result"},
	)
	// LoginAttempts counts admin logins by result.
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "amc", Name: "login_attempts_total", Help: "Number of admin login attempts by result."},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// RegisterCollectors registers every collector once.
func RegisterCollectors(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(ContentMutations)
		reg.MustRegister(Uploads)
		reg.MustRegister(LoginAttempts)
	})
}
