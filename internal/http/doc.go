// Package http fetches catalog assets over HTTP.
//
// The Client in this package handles:
//   - A fixed, browser-like User-Agent header (some image hosts reject
//     empty or library default agents)
//   - Additional static request headers
//   - One timeout bounding the whole request, body included
//   - Mapping every failure to a *FetchError
//
// # Basic Usage
//
//	client := http.NewClient(http.WithTimeout(30 * time.Second))
//
//	data, err := client.Fetch(ctx, "https://i.imgflip.com/1nhqil.jpg")
//	if err != nil {
//	    var fe *http.FetchError
//	    if errors.As(err, &fe) {
//	        fmt.Println(fe.Reason)
//	    }
//	}
//
// # Retries
//
// Fetch makes exactly one attempt. Callers decide what a failure means.
package http
