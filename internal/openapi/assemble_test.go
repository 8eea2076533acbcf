package openapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwspec/internal/ledger"
	"gwspec/internal/model"
)

func testIdentifiers() model.Identifiers {
	return model.Identifiers{
		Environment: model.Development,
		Title:       "example-api-name",
		SchemeName:  testScheme,
		UserPoolID:  "eu-west-1_AbCdEf",
		GatewayURL:  "http://backend.internal",
		Region:      "eu-west-1",
		AccountID:   "123456789012",
	}
}

func testServices() []model.ServiceConfig {
	return []model.ServiceConfig{
		{Name: "index.html", Port: 3000, BackendBaseURL: "http://backend.internal"},
		{Name: "test", Port: 3000, RequiresProxyPath: true, RequiresAuthorization: true, BackendBaseURL: "http://backend.internal"},
	}
}

func TestAssemble(t *testing.T) {
	doc, err := Assemble("example-api-name", ledger.Version{Major: 1, Patch: 1}, testServices(), testIdentifiers())
	require.NoError(t, err)

	assert.Equal(t, "3.0.0", doc.OpenAPI)
	assert.Equal(t, "example-api-name", doc.Info.Title)
	assert.Equal(t, "1.0.1", doc.Info.Version)
	assert.Equal(t, 2, doc.Paths.Len())
	require.NotNil(t, doc.Paths.Value("/index.html"))
	require.NotNil(t, doc.Paths.Value("/test/{proxy+}"))

	scheme := doc.Components.SecuritySchemes[testScheme]
	require.NotNil(t, scheme)
	assert.Equal(t, "apiKey", scheme.Value.Type)
	assert.Equal(t, "Authorization", scheme.Value.Name)
	assert.Equal(t, "header", scheme.Value.In)
	assert.Equal(t, "cognito_user_pools", scheme.Value.Extensions["x-amazon-apigateway-authtype"])
	authorizer, ok := scheme.Value.Extensions["x-amazon-apigateway-authorizer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"arn:aws:cognito-idp:eu-west-1:123456789012:userpool/eu-west-1_AbCdEf"}, authorizer["providerARNs"])

	require.NoError(t, CheckSecurity(doc))
}

func TestAssemble_SecurityReferencesKnownScheme(t *testing.T) {
	doc, err := Assemble("t", ledger.Default, testServices(), testIdentifiers())
	require.NoError(t, err)

	routes, err := ExtractRoutes(doc)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	for _, r := range routes {
		if r.Path == "/test/{proxy+}" {
			assert.True(t, r.Secured)
			for _, name := range r.SchemeNames {
				assert.Contains(t, doc.Components.SecuritySchemes, name)
			}
		} else {
			assert.False(t, r.Secured)
		}
	}
}

func TestAssemble_DuplicatePath(t *testing.T) {
	configs := []model.ServiceConfig{
		{Name: "orders", Port: 3000},
		{Name: "billing", Port: 3001},
		{Name: "orders", Port: 4000, RequiresAuthorization: true},
	}

	doc, err := Assemble("t", ledger.Default, configs, testIdentifiers())
	assert.Nil(t, doc)

	var dup *DuplicatePathError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "/orders", dup.Path)
	assert.Equal(t, "orders", dup.Existing)
}

func TestAssemble_DuplicateProxyBasePath(t *testing.T) {
	configs := []model.ServiceConfig{
		{Name: "a/{proxy+}", Port: 1},
		{Name: "a", Port: 1, RequiresProxyPath: true},
	}

	doc, err := Assemble("t", ledger.Default, configs, testIdentifiers())
	assert.Nil(t, doc)

	var dup *DuplicatePathError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "/a/{proxy+}", dup.Path)
	assert.Equal(t, "a/{proxy+}", dup.Existing)
	assert.Equal(t, "a", dup.Incoming)
}

func TestAssemble_ProxyAndPlainDoNotCollide(t *testing.T) {
	configs := []model.ServiceConfig{
		{Name: "orders", Port: 3000},
		{Name: "orders", Port: 3000, RequiresProxyPath: true},
	}
	doc, err := Assemble("t", ledger.Default, configs, testIdentifiers())
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Paths.Len())
}

func TestAssemble_MissingIdentifier(t *testing.T) {
	for _, key := range []model.IdentifierKey{model.UserPoolID, model.Region, model.AccountID} {
		t.Run(string(key), func(t *testing.T) {
			ids := testIdentifiers()
			switch key {
			case model.UserPoolID:
				ids.UserPoolID = ""
			case model.Region:
				ids.Region = ""
			case model.AccountID:
				ids.AccountID = ""
			}

			doc, err := Assemble("t", ledger.Default, testServices(), ids)
			assert.Nil(t, doc)

			var missing *model.MissingEnvironmentIdentifierError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, key, missing.Key)
		})
	}
}

func TestAssemble_UnknownEnvironmentWithoutSchemeName(t *testing.T) {
	ids := testIdentifiers()
	ids.Environment = model.Environment(7)
	ids.SchemeName = ""

	doc, err := Assemble("t", ledger.Default, testServices(), ids)
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, model.ErrUnknownEnvironment)
}

func TestPathTable(t *testing.T) {
	table := NewPathTable()
	require.NoError(t, table.Insert(PathItem{BasePath: "/b", Service: "b"}))
	require.NoError(t, table.Insert(PathItem{BasePath: "/a", Service: "a"}))

	err := table.Insert(PathItem{BasePath: "/b", Service: "b2"})
	var dup *DuplicatePathError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "b", dup.Existing)
	assert.Equal(t, "b2", dup.Incoming)

	assert.Equal(t, 2, table.Len())
	items := table.Items()
	assert.Equal(t, "/b", items[0].BasePath)
	assert.Equal(t, "/a", items[1].BasePath)
	assert.Equal(t, "b", items[0].Service, "a rejected insert leaves the first entry in place")
}
