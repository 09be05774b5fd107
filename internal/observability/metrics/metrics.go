package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	defaultService = "auth"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	authRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"service", "result"},
	)

	authLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)

	googleSignInsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_google_signins_total",
			Help: "Total number of Google sign-in attempts, by whether an account was created.",
		},
		[]string{"service", "outcome", "result"},
	)

	passwordResetRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_password_reset_requests_total",
			Help: "Total number of forgot-password requests.",
		},
		[]string{"service", "result"},
	)

	otpValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_otp_validations_total",
			Help: "Total number of reset code checks.",
		},
		[]string{"service", "flow", "result"},
	)

	passwordResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_password_resets_total",
			Help: "Total number of completed or failed password resets.",
		},
		[]string{"service", "result"},
	)

	tokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of session tokens issued.",
		},
		[]string{"service", "flow", "result"},
	)

	authenticationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_authentication_attempts_total",
			Help: "Total number of bearer token checks on protected routes.",
		},
		[]string{"service", "method", "result"},
	)

	// OTPCodesPurgedTotal counts expired reset codes removed by the purge loop.
	OTPCodesPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_otp_codes_purged_total",
			Help: "Total number of expired reset codes removed by the purge loop.",
		},
	)
)

// Curried views used by the rest of the service. They are usable before
// MustRegister is called (tests), they just are not exported anywhere.
var (
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	AuthRegistrationsTotal     *prometheus.CounterVec
	AuthLoginsTotal            *prometheus.CounterVec
	GoogleSignInsTotal         *prometheus.CounterVec
	PasswordResetRequestsTotal *prometheus.CounterVec
	OTPValidationsTotal        *prometheus.CounterVec
	PasswordResetsTotal        *prometheus.CounterVec
	TokensIssuedTotal          *prometheus.CounterVec
	AuthenticationAttempts     *prometheus.CounterVec
)

func init() { curry(defaultService) }

func curry(serviceName string) {
	labels := prometheus.Labels{"service": serviceName}
	HTTPRequestsTotal = httpRequestsTotal.MustCurryWith(labels)
	HTTPRequestDurationSeconds = httpRequestDurationSeconds.MustCurryWith(labels).(*prometheus.HistogramVec)
	AuthRegistrationsTotal = authRegistrationsTotal.MustCurryWith(labels)
	AuthLoginsTotal = authLoginsTotal.MustCurryWith(labels)
	GoogleSignInsTotal = googleSignInsTotal.MustCurryWith(labels)
	PasswordResetRequestsTotal = passwordResetRequestsTotal.MustCurryWith(labels)
	OTPValidationsTotal = otpValidationsTotal.MustCurryWith(labels)
	PasswordResetsTotal = passwordResetsTotal.MustCurryWith(labels)
	TokensIssuedTotal = tokensIssuedTotal.MustCurryWith(labels)
	AuthenticationAttempts = authenticationAttemptsTotal.MustCurryWith(labels)
}

// MustRegister curries every vector with the service name and registers the
// collectors on the default registry. Call it once at startup.
func MustRegister(serviceName string) {
	curry(serviceName)
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		authRegistrationsTotal,
		authLoginsTotal,
		googleSignInsTotal,
		passwordResetRequestsTotal,
		otpValidationsTotal,
		passwordResetsTotal,
		tokensIssuedTotal,
		authenticationAttemptsTotal,
		OTPCodesPurgedTotal,
	)
}

// Result maps an operation error onto the result label.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
