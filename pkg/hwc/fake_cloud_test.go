package hwc

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stratoshell/stratoshell/pkg/signer"
	"github.com/stretchr/testify/require"
)

const (
	testRegion    = "r1"
	testDomain    = "example.com"
	testProjectID = "pid-1"
)

var testNow = time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC)

var testCreds = signer.Credentials{AccessKey: "AKTEST", SecretKey: "SKTEST"}

type recordedRequest struct {
	Method string
	Host   string
	URI    string
	Header http.Header
	Body   []byte
}

type fakeResponse struct {
	status int
	body   string
}

// fakeCloud routes requests by "METHOD host/path?query" and records each one.
type fakeCloud struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]fakeResponse
	requests []recordedRequest
}

func newFakeCloud(t *testing.T) *fakeCloud {
	fc := &fakeCloud{routes: map[string]fakeResponse{}}
	fc.server = httptest.NewServer(http.HandlerFunc(fc.handle))
	t.Cleanup(fc.server.Close)

	fc.on(http.MethodGet, "iam.r1.example.com", projectsPath, http.StatusOK, `{"projects":[
		{"id":"pid-2","name":"r2","enabled":true},
		{"id":"pid-1","name":"r1","enabled":true},
		{"id":"pid-3","name":"r1_sub","enabled":false}]}`)
	return fc
}

func (fc *fakeCloud) on(method, host, uri string, status int, body string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.routes[method+" "+host+uri] = fakeResponse{status: status, body: body}
}

func (fc *fakeCloud) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	uri := r.URL.RequestURI()

	fc.mu.Lock()
	fc.requests = append(fc.requests, recordedRequest{
		Method: r.Method,
		Host:   r.Host,
		URI:    uri,
		Header: r.Header.Clone(),
		Body:   body,
	})
	resp, ok := fc.routes[r.Method+" "+r.Host+uri]
	fc.mu.Unlock()

	if !ok {
		http.Error(w, "unexpected request "+r.Method+" "+r.Host+uri, http.StatusTeapot)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

// calls returns the recorded requests other than project lookups.
func (fc *fakeCloud) calls() []recordedRequest {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	var out []recordedRequest
	for _, r := range fc.requests {
		if r.URI == projectsPath {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (fc *fakeCloud) all() []recordedRequest {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]recordedRequest(nil), fc.requests...)
}

// redirectTransport sends every request to target while keeping the
// logical Host the request was signed for.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

func newTestClient(t *testing.T, fc *fakeCloud) *Client {
	c, err := NewClient(testCreds)
	require.NoError(t, err)

	target, err := url.Parse(fc.server.URL)
	require.NoError(t, err)

	c.HTTPClient = &http.Client{Transport: redirectTransport{target: target}}
	c.Domain = testDomain
	c.Now = func() time.Time { return testNow }
	return c
}
