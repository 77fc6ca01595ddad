// Package metrics records configuration resolution outcomes.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	start := time.Now()
//	cfg, err := resolver.Resolve()
//	recorder.ObserveResolve(time.Since(start), metrics.OutcomeOf(err))
//
// Recording happens around Resolve, never inside it; resolution itself stays
// free of side effects.
package metrics
