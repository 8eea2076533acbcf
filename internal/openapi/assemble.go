package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"gwspec/internal/ledger"
	"gwspec/internal/model"
)

const (
	OpenAPIVersion = "3.0.0"

	cognitoAuthType = "cognito_user_pools"
)

type DuplicatePathError struct {
	Path     string
	Existing string
	Incoming string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("duplicate path %s: services %q and %q resolve to the same route", e.Path, e.Existing, e.Incoming)
}

// PathTable accumulates synthesized path items for one document. Inserting a
// base path twice is an error.
type PathTable struct {
	order []string
	items map[string]PathItem
}

func NewPathTable() *PathTable {
	return &PathTable{items: map[string]PathItem{}}
}

func (t *PathTable) Insert(item PathItem) error {
	if prev, ok := t.items[item.BasePath]; ok {
		return &DuplicatePathError{Path: item.BasePath, Existing: prev.Service, Incoming: item.Service}
	}
	t.items[item.BasePath] = item
	t.order = append(t.order, item.BasePath)
	return nil
}

func (t *PathTable) Len() int { return len(t.order) }

// Items returns the path items in insertion order.
func (t *PathTable) Items() []PathItem {
	out := make([]PathItem, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, t.items[p])
	}
	return out
}

// Assemble synthesizes every service in order and wraps the resulting path
// table with document metadata and the Cognito security scheme. No document is
// returned on error.
func Assemble(title string, version ledger.Version, configs []model.ServiceConfig, ids model.Identifiers) (*openapi3.T, error) {
	if err := ids.Require(model.UserPoolID, model.Region, model.AccountID); err != nil {
		return nil, err
	}

	schemeName := ids.SchemeName
	if schemeName == "" {
		if !ids.Environment.Known() {
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownEnvironment, ids.Environment)
		}
		schemeName = ids.Environment.Profile().SchemeName
	}

	table := NewPathTable()
	for _, cfg := range configs {
		if err := table.Insert(Synthesize(cfg, schemeName)); err != nil {
			return nil, err
		}
	}

	doc := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:   title,
			Version: version.String(),
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{
				schemeName: &openapi3.SecuritySchemeRef{Value: cognitoScheme(ids)},
			},
		},
	}
	for _, item := range table.Items() {
		doc.Paths.Set(item.BasePath, &openapi3.PathItem{
			Options:    item.Options,
			Extensions: map[string]any{AnyMethodExtension: item.Any},
		})
	}
	return doc, nil
}

func UserPoolARN(ids model.Identifiers) string {
	return fmt.Sprintf("arn:aws:cognito-idp:%s:%s:userpool/%s", ids.Region, ids.AccountID, ids.UserPoolID)
}

func cognitoScheme(ids model.Identifiers) *openapi3.SecurityScheme {
	return &openapi3.SecurityScheme{
		Type: "apiKey",
		Name: "Authorization",
		In:   "header",
		Extensions: map[string]any{
			"x-amazon-apigateway-authtype": cognitoAuthType,
			"x-amazon-apigateway-authorizer": map[string]any{
				"providerARNs": []string{UserPoolARN(ids)},
				"type":         cognitoAuthType,
			},
		},
	}
}
