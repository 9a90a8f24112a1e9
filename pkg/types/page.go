package types

import (
	"net/http"
	"time"
)

// Page represents one fetched HTTP response body with the headers needed for
// charset resolution.
type Page struct {
	URL        string
	Body       []byte
	Header     http.Header
	StatusCode int
	FetchedAt  time.Time
}
