package headless

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/chromedp/cdproto/network"
)

// documentResponse records the status line of the top-level document so the
// loader can apply the same non-2xx handling as the HTTP backend.
type documentResponse struct {
	mu      sync.Mutex
	status  int
	headers http.Header
	url     string
}

func newDocumentResponse() *documentResponse {
	return &documentResponse{}
}

func (d *documentResponse) observe(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	headers := fromNetworkHeaders(resp.Response.Headers)
	d.mu.Lock()
	defer d.mu.Unlock()
	// Redirect hops arrive first; keep the last document seen.
	d.status = int(resp.Response.Status)
	d.headers = headers
	d.url = resp.Response.URL
}

func (d *documentResponse) resolve(requestURL, finalURL string) (int, http.Header, string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	url := d.url
	if url == "" {
		url = finalURL
	}
	if url == "" {
		url = requestURL
	}
	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	headers := d.headers.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	return status, headers, url
}

func fromNetworkHeaders(src network.Headers) http.Header {
	headers := http.Header{}
	for key, value := range src {
		switch v := value.(type) {
		case string:
			headers.Add(key, v)
		case []string:
			for _, entry := range v {
				headers.Add(key, entry)
			}
		case []any:
			for _, entry := range v {
				headers.Add(key, fmt.Sprint(entry))
			}
		default:
			headers.Add(key, fmt.Sprint(v))
		}
	}
	return headers
}

func toNetworkHeaders(h http.Header) network.Headers {
	headers := network.Headers{}
	for key, values := range h {
		switch len(values) {
		case 0:
		case 1:
			headers[http.CanonicalHeaderKey(key)] = values[0]
		default:
			headers[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
		}
	}
	return headers
}
