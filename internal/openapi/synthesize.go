package openapi

import (
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"gwspec/internal/model"
)

const (
	IntegrationExtension = "x-amazon-apigateway-integration"
	AnyMethodExtension   = "x-amazon-apigateway-any-method"

	ProxyParam  = "proxy"
	ClientParam = "client"

	corsAllowedMethods = "DELETE,GET,HEAD,OPTIONS,PATCH,POST,PUT"
	passthroughNoMatch = "when_no_match"
)

// successStatuses are the documented integration response mappings of the
// any-method.
var successStatuses = []int{200}

var corsHeaders = []string{
	"Access-Control-Allow-Origin",
	"Access-Control-Allow-Methods",
	"Access-Control-Allow-Headers",
}

// Integration is the x-amazon-apigateway-integration object.
type Integration struct {
	Type                string                         `json:"type"`
	HTTPMethod          string                         `json:"httpMethod,omitempty"`
	URI                 string                         `json:"uri,omitempty"`
	Responses           map[string]IntegrationResponse `json:"responses,omitempty"`
	RequestParameters   map[string]string              `json:"requestParameters,omitempty"`
	RequestTemplates    map[string]string              `json:"requestTemplates,omitempty"`
	PassthroughBehavior string                         `json:"passthroughBehavior,omitempty"`
}

type IntegrationResponse struct {
	StatusCode         string            `json:"statusCode"`
	ResponseParameters map[string]string `json:"responseParameters,omitempty"`
}

// PathItem is the synthesized fragment for one service.
type PathItem struct {
	BasePath string
	Service  string
	Options  *openapi3.Operation
	Any      *openapi3.Operation
}

func BasePath(cfg model.ServiceConfig) string {
	if cfg.RequiresProxyPath {
		return "/" + cfg.Name + "/{" + ProxyParam + "+}"
	}
	return "/" + cfg.Name
}

// Synthesize builds the OPTIONS (mock CORS preflight) and ANY (HTTP proxy)
// methods for one service. It has no side effects.
func Synthesize(cfg model.ServiceConfig, schemeName string) PathItem {
	return PathItem{
		BasePath: BasePath(cfg),
		Service:  cfg.Name,
		Options:  optionsMethod(cfg),
		Any:      anyMethod(cfg, schemeName),
	}
}

func optionsMethod(cfg model.ServiceConfig) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Parameters = openapi3.Parameters{}
	if cfg.RequiresProxyPath {
		op.Parameters = append(op.Parameters, proxyParameter())
	}

	resp := openapi3.NewResponse().WithDescription("200 response")
	resp.Headers = openapi3.Headers{}
	for _, name := range corsHeaders {
		resp.Headers[name] = &openapi3.HeaderRef{Value: &openapi3.Header{
			Parameter: openapi3.Parameter{Schema: openapi3.NewSchemaRef("", openapi3.NewStringSchema())},
		}}
	}
	resp.Content = openapi3.Content{}
	op.Responses = &openapi3.Responses{}
	op.Responses.Set("200", &openapi3.ResponseRef{Value: resp})

	op.Extensions = map[string]any{
		IntegrationExtension: Integration{
			Type: "mock",
			Responses: map[string]IntegrationResponse{
				"default": {
					StatusCode: "200",
					ResponseParameters: map[string]string{
						"method.response.header.Access-Control-Allow-Methods": "'" + corsAllowedMethods + "'",
						"method.response.header.Access-Control-Allow-Headers": "'*'",
						"method.response.header.Access-Control-Allow-Origin":  "'*'",
					},
				},
			},
			RequestTemplates:    map[string]string{"application/json": `{"statusCode": 200}`},
			PassthroughBehavior: passthroughNoMatch,
		},
	}
	return op
}

func anyMethod(cfg model.ServiceConfig, schemeName string) *openapi3.Operation {
	op := openapi3.NewOperation()

	uri := cfg.BackendBaseURL + ":" + strconv.Itoa(cfg.Port) + "/" + cfg.Name
	requestParams := map[string]string{
		"integration.request.header." + ClientParam: "method.request.header." + ClientParam,
	}
	if cfg.RequiresProxyPath {
		op.Parameters = append(op.Parameters, proxyParameter())
		uri += "/{" + ProxyParam + "}"
		requestParams["integration.request.path."+ProxyParam] = "method.request.path." + ProxyParam
	}
	op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: openapi3.NewHeaderParameter(ClientParam).
		WithRequired(true).
		WithSchema(openapi3.NewStringSchema())})

	responses := make(map[string]IntegrationResponse, len(successStatuses))
	for _, code := range successStatuses {
		s := strconv.Itoa(code)
		responses[s] = IntegrationResponse{StatusCode: s}
	}

	op.Extensions = map[string]any{
		IntegrationExtension: Integration{
			Type:                "http_proxy",
			HTTPMethod:          "ANY",
			URI:                 uri,
			Responses:           responses,
			RequestParameters:   requestParams,
			PassthroughBehavior: passthroughNoMatch,
		},
	}

	// An empty list would mean "no auth enforced"; leave the field out instead.
	if cfg.RequiresAuthorization {
		op.Security = &openapi3.SecurityRequirements{
			openapi3.NewSecurityRequirement().Authenticate(schemeName),
		}
	}
	return op
}

func proxyParameter() *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: openapi3.NewPathParameter(ProxyParam).
		WithRequired(true).
		WithSchema(openapi3.NewStringSchema())}
}
