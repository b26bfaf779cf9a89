package httptransport

import "expvar"

var (
	metricEventLookupTotal  = expvar.NewInt("event_lookup_total")
	metricEventLookupErrors = expvar.NewInt("event_lookup_errors_total")

	metricRegistrationTotal  = expvar.NewInt("registration_submit_total")
	metricRegistrationErrors = expvar.NewInt("registration_submit_errors_total")

	metricCheckinTotal  = expvar.NewInt("checkin_total")
	metricCheckinErrors = expvar.NewInt("checkin_errors_total")
)
