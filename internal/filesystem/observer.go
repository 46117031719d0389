package filesystem

// Observer records filesystem operation metrics. The implementation lives in
// the metrics package, which imports this one.
type Observer interface {
	// ObserveOperation records duration and error status for one logical
	// operation ("stat", "open", "read", "copy"), retries included.
	ObserveOperation(operation string, durationSeconds float64, err error)

	ObserveRetryAttempt(operation string)
	ObserveRetrySuccess(operation string)
	ObserveRetryFailure(operation string)
	ObserveStaleError(operation string)
}

var defaultObserver Observer

// SetObserver sets the package-level metrics observer. Call once at startup.
func SetObserver(o Observer) {
	defaultObserver = o
}

// nopObserver is used when no observer has been installed, e.g. in tests.
type nopObserver struct{}

func (nopObserver) ObserveOperation(string, float64, error) {}
func (nopObserver) ObserveRetryAttempt(string) {}
func (nopObserver) ObserveRetrySuccess(string) {}
func (nopObserver) ObserveRetryFailure(string) {}
func (nopObserver) ObserveStaleError(string) {}

func observe() Observer {
	if defaultObserver == nil {
		return nopObserver{}
	}
	return defaultObserver
}
