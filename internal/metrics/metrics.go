package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counters for the auth flows. The outcome label is "success" or "failure".
var (
	OTPRequested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "identity_otp_requested_total",
		Help: "OTP challenges issued.",
	})
	OTPVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_otp_verified_total",
		Help: "OTP verification attempts by outcome.",
	}, []string{"outcome"})
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_logins_total",
		Help: "Password logins by outcome.",
	}, []string{"outcome"})
	Refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_token_refreshes_total",
		Help: "Refresh token rotations by outcome.",
	}, []string{"outcome"})
	BucketProvisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_bucket_provisions_total",
		Help: "Bucket provisioning calls by outcome.",
	}, []string{"outcome"})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome converts an error into the counter label value.
func Outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
