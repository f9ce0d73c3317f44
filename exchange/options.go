package exchange

import (
	"net/http"
	"time"
)

type Options struct {
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	CheckStatus     bool
	Auth            AuthOptions
	Bearer          string
	SkipVerify      bool
	ForceHTTP1      bool

	// ResumeFrom is the size of an existing partial download. When
	// positive, a Range header is added to the request. It must be set
	// before BuildHTTPRequest; the Download Manager relies on the offset
	// matching the bytes already on disk.
	ResumeFrom int64

	// Transport overrides the HTTP transport (used by tests).
	Transport http.RoundTripper
}

type AuthOptions struct {
	Enabled  bool
	UserName string
	Password string
}
