package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/danielolaszy/jiragraph/internal/logging"
)

// Engine turns a Graphviz document into image bytes.
type Engine interface {
	Render(ctx context.Context, document string) ([]byte, error)
	// Extension is the file extension of the produced image, without a dot.
	Extension() string
}

// ChartClient renders documents through a remote chart service that accepts
// a form POST with cht=gv and the document in chl.
type ChartClient struct {
	url        string
	httpClient *http.Client
}

// NewChartClient creates a chart client. A nil httpClient uses http.DefaultClient.
func NewChartClient(chartURL string, httpClient *http.Client) *ChartClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ChartClient{url: chartURL, httpClient: httpClient}
}

// Render posts the document and returns the response body.
func (c *ChartClient) Render(ctx context.Context, document string) ([]byte, error) {
	form := url.Values{}
	form.Set("cht", "gv")
	form.Set("chl", document)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create chart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logging.Debug("requesting chart", "url", c.url, "document_bytes", len(document))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart service returned status %d", resp.StatusCode)
	}
	return body, nil
}

// Extension returns "png".
func (c *ChartClient) Extension() string { return "png" }

// Graphviz renders documents locally.
type Graphviz struct {
	format graphviz.Format
}

// NewGraphviz creates a local renderer for "png" or "svg".
func NewGraphviz(format string) (*Graphviz, error) {
	switch format {
	case "png":
		return &Graphviz{format: graphviz.PNG}, nil
	case "svg":
		return &Graphviz{format: graphviz.SVG}, nil
	}
	return nil, fmt.Errorf("unsupported image format %q", format)
}

// Render parses and lays out the document.
func (g *Graphviz) Render(ctx context.Context, document string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, g.format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the output format.
func (g *Graphviz) Extension() string { return string(g.format) }
