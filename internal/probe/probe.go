// Package probe sends CORS preflight requests to a deployed stage.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gwspec/internal/model"
	"gwspec/internal/openapi"
)

const defaultTimeout = 10 * time.Second

// SampleSegment replaces a greedy {proxy+} parameter in probed paths.
const SampleSegment = "healthcheck"

type Result struct {
	Path        string
	URL         string
	StatusCode  int
	Status      string
	Elapsed     time.Duration
	AllowOrigin string
	Err         error
}

// OK reports a 2xx answer carrying an Access-Control-Allow-Origin header.
func (r Result) OK() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300 && r.AllowOrigin != ""
}

// InvokeURL is the default execute-api endpoint of a deployed stage.
func InvokeURL(apiID, region, stage string) string {
	return fmt.Sprintf("https://%s.execute-api.%s.amazonaws.com/%s", apiID, region, stage)
}

type Prober struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *Prober {
	return &Prober{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// Run sends one OPTIONS request per route. Failures are recorded on the
// matching Result and never stop the run.
func (p *Prober) Run(ctx context.Context, routes []model.Route) []Result {
	out := make([]Result, 0, len(routes))
	for _, r := range routes {
		out = append(out, p.probe(ctx, r.Path))
	}
	return out
}

func (p *Prober) probe(ctx context.Context, path string) Result {
	res := Result{Path: path}

	u, err := url.Parse(p.baseURL + samplePath(path))
	if err != nil {
		res.Err = err
		return res
	}
	res.URL = u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, res.URL, nil)
	if err != nil {
		res.Err = err
		return res
	}
	req.Header.Set("Origin", "https://gwspec.invalid")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	start := time.Now()
	resp, err := p.client.Do(req)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	res.StatusCode = resp.StatusCode
	res.Status = resp.Status
	res.AllowOrigin = resp.Header.Get("Access-Control-Allow-Origin")
	return res
}

func samplePath(path string) string {
	return strings.ReplaceAll(path, "{"+openapi.ProxyParam+"+}", SampleSegment)
}
