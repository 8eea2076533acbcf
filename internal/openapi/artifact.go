package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"gwspec/internal/model"
)

const defaultTimeout = 10 * time.Second

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported artifact format %q (want json or yaml)", s)
	}
}

// ArtifactName is the deterministic file name for an environment's document.
func ArtifactName(env model.Environment, format Format) string {
	if format == "" {
		format = FormatJSON
	}
	return "openapi-" + strings.ToLower(env.String()) + "." + string(format)
}

// Marshal serializes the document. JSON output is indented with two spaces,
// which is also the body sent to the gateway on import.
func Marshal(doc *openapi3.T, format Format) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal openapi document: %w", err)
	}
	if format != FormatYAML {
		return append(b, '\n'), nil
	}

	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode openapi document: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal openapi document as yaml: %w", err)
	}
	return out, nil
}

func WriteArtifact(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write openapi file: %w", err)
	}
	return path, nil
}

// LoadArtifact reads a generated document from a local path or an http(s)
// URL. The document is not validated: gateway extensions and greedy path
// parameters are outside what the OpenAPI validator accepts.
func LoadArtifact(ctx context.Context, location string) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}

	location = strings.TrimSpace(location)
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		doc, err := loader.LoadFromFile(location)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", location, err)
		}
		return doc, nil
	}

	if _, err := url.Parse(location); err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: defaultTimeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: %s", location, resp.Status)
	}
	return loader.LoadFromIoReader(resp.Body)
}

// Parse decodes a serialized document (JSON or YAML).
func Parse(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openapi document: %w", err)
	}
	return doc, nil
}
