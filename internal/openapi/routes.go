package openapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"gwspec/internal/model"
)

// AnyMethodView decodes the any-method extension whether it holds an
// in-memory *openapi3.Operation or the generic value produced by the loader.
type AnyMethodView struct {
	Parameters []struct {
		Name     string `json:"name"`
		In       string `json:"in"`
		Required bool   `json:"required"`
	} `json:"parameters"`
	Security    []map[string][]string `json:"security"`
	Integration *Integration          `json:"x-amazon-apigateway-integration"`
}

func decodeExtension(v any, out any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// AnyMethod returns the decoded any-method extension of a path item.
func AnyMethod(item *openapi3.PathItem) (*AnyMethodView, error) {
	if item == nil || item.Extensions == nil {
		return nil, nil
	}
	raw, ok := item.Extensions[AnyMethodExtension]
	if !ok || raw == nil {
		return nil, nil
	}
	var view AnyMethodView
	if err := decodeExtension(raw, &view); err != nil {
		return nil, fmt.Errorf("decode %s: %w", AnyMethodExtension, err)
	}
	return &view, nil
}

// ExtractRoutes flattens a document into one Route per path, sorted by path.
func ExtractRoutes(doc *openapi3.T) ([]model.Route, error) {
	var out []model.Route
	if doc == nil || doc.Paths == nil {
		return out, nil
	}

	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		r := model.Route{Path: path}

		for method := range item.Operations() {
			r.Methods = append(r.Methods, strings.ToUpper(method))
		}
		sort.Strings(r.Methods)

		view, err := AnyMethod(item)
		if err != nil {
			return nil, fmt.Errorf("path %s: %w", path, err)
		}
		if view != nil {
			r.Methods = append(r.Methods, "ANY")
			for _, p := range view.Parameters {
				r.Params = append(r.Params, model.Param{Name: p.Name, In: model.ParamLocation(p.In), Required: p.Required})
			}
			for _, req := range view.Security {
				for name := range req {
					r.SchemeNames = append(r.SchemeNames, name)
				}
			}
			sort.Strings(r.SchemeNames)
			r.Secured = len(r.SchemeNames) > 0
			if view.Integration != nil {
				r.IntegrationType = view.Integration.Type
				r.URI = view.Integration.URI
			}
		}

		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// CheckSecurity reports any-method security requirements that reference a
// scheme missing from components.securitySchemes.
func CheckSecurity(doc *openapi3.T) error {
	routes, err := ExtractRoutes(doc)
	if err != nil {
		return err
	}
	var schemes openapi3.SecuritySchemes
	if doc.Components != nil {
		schemes = doc.Components.SecuritySchemes
	}
	for _, r := range routes {
		for _, name := range r.SchemeNames {
			if _, ok := schemes[name]; !ok {
				return fmt.Errorf("path %s references unknown security scheme %q", r.Path, name)
			}
		}
	}
	return nil
}
