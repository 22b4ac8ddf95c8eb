package http

// FetchError describes why a single fetch failed.
//
// StatusCode is set when the server answered with a non-2xx status and is
// zero for transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Reason     string
	Err        error

	timedOut bool
}

func (e *FetchError) Error() string {
	return "GET " + e.URL + ": " + e.Reason
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request exceeded its deadline.
func (e *FetchError) Timeout() bool {
	return e.timedOut
}
