package render

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yyyoichi/httpcache-go"
)

var ErrHostNotAllowed = errors.New("host not allowed")

const maxRedirects = 10

// HostAllowlist is the set of hosts remote images may be fetched from.
// The zero value allows nothing.
type HostAllowlist map[string]bool

func NewHostAllowlist(hosts ...string) HostAllowlist {
	allow := make(HostAllowlist, len(hosts))
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allow[h] = true
		}
	}
	return allow
}

func (a HostAllowlist) Allows(host string) bool {
	return a[strings.ToLower(host)]
}

// CheckRedirect re-checks the host on every hop. It fits
// http.Client.CheckRedirect.
func (a HostAllowlist) CheckRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if !a.Allows(req.URL.Hostname()) {
		return fmt.Errorf("%w: redirect to %s", ErrHostNotAllowed, req.URL.Hostname())
	}
	return nil
}

// Restrict returns a copy of c that follows redirects only within a.
func (a HostAllowlist) Restrict(c *http.Client) *http.Client {
	if c == nil {
		c = http.DefaultClient
	}
	restricted := *c
	restricted.CheckRedirect = a.CheckRedirect
	return &restricted
}

// NewHTTPClient returns the client used for remote images. With a cache
// directory, responses are kept on disk across restarts.
func NewHTTPClient(cacheDir string, allow HostAllowlist) Doer {
	base := allow.Restrict(&http.Client{Timeout: 30 * time.Second})
	if cacheDir == "" {
		return base
	}
	return &httpcache.Client{
		Client:  base,
		Cache:   httpcache.NewStorageCache(cacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}
}
