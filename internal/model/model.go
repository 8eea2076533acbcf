package model

import (
	"errors"
	"fmt"
	"strings"
)

type ParamLocation string

const (
	ParamInPath   ParamLocation = "path"
	ParamInHeader ParamLocation = "header"
)

// ServiceConfig describes one backend service routed through the gateway.
type ServiceConfig struct {
	Name                  string `yaml:"name"`
	Port                  int    `yaml:"port"`
	RequiresProxyPath     bool   `yaml:"proxy"`
	RequiresAuthorization bool   `yaml:"authorization"`
	BackendBaseURL        string `yaml:"backendBaseUrl"`
}

type Param struct {
	Name     string
	In       ParamLocation
	Required bool
}

// Route is a flattened view of one path item in a generated document.
type Route struct {
	Path            string
	Methods         []string
	IntegrationType string
	URI             string
	Secured         bool
	SchemeNames     []string
	Params          []Param
}

var ErrUnknownEnvironment = errors.New("unknown environment")

// Environment is the closed set of deployment targets.
type Environment int

const (
	Development Environment = iota
	Production
)

var environments = []Environment{Development, Production}

// Environments lists every supported environment in prompt order.
func Environments() []Environment {
	out := make([]Environment, len(environments))
	copy(out, environments)
	return out
}

func ParseEnvironment(s string) (Environment, error) {
	want := strings.TrimSpace(s)
	for _, env := range environments {
		if strings.EqualFold(env.String(), want) {
			return env, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEnvironment, s)
}

func (e Environment) String() string {
	switch e {
	case Development:
		return "Development"
	case Production:
		return "Production"
	default:
		return fmt.Sprintf("Environment(%d)", int(e))
	}
}

// Profile holds the fixed, non-secret settings of an environment.
type Profile struct {
	EnvPrefix  string
	Title      string
	SchemeName string
}

// Known reports whether e is one of Environments.
func (e Environment) Known() bool {
	for _, env := range environments {
		if e == env {
			return true
		}
	}
	return false
}

// Profile returns the environment's settings. Unknown values get the zero
// Profile.
func (e Environment) Profile() Profile {
	switch e {
	case Development:
		return Profile{EnvPrefix: "DEV_", Title: "example-api-name", SchemeName: "non-prod-authorization"}
	case Production:
		return Profile{EnvPrefix: "PROD_", Title: "example-api-name", SchemeName: "prod-authorization"}
	default:
		return Profile{}
	}
}

// Identifiers is the resolved identifier bundle for one environment.
type Identifiers struct {
	Environment Environment
	Title       string
	SchemeName  string
	UserPoolID  string
	GatewayURL  string
	Region      string
	AccountID   string
}

// IdentifierKey names an environment identifier by its variable suffix.
type IdentifierKey string

const (
	UserPoolID IdentifierKey = "USER_POOL"
	GatewayURL IdentifierKey = "API_GATEWAY_URL"
	Region     IdentifierKey = "API_GATEWAY_REGION"
	AccountID  IdentifierKey = "ACCOUNT_ID"
)

type MissingEnvironmentIdentifierError struct {
	Environment Environment
	Key         IdentifierKey
}

func (e *MissingEnvironmentIdentifierError) Error() string {
	return fmt.Sprintf("missing environment identifier %s for %s (set %s%s)",
		e.Key, e.Environment, e.Environment.Profile().EnvPrefix, e.Key)
}

func (ids Identifiers) Value(key IdentifierKey) string {
	switch key {
	case UserPoolID:
		return ids.UserPoolID
	case GatewayURL:
		return ids.GatewayURL
	case Region:
		return ids.Region
	case AccountID:
		return ids.AccountID
	default:
		return ""
	}
}

// Require fails on the first key whose value is absent or blank.
func (ids Identifiers) Require(keys ...IdentifierKey) error {
	for _, key := range keys {
		if strings.TrimSpace(ids.Value(key)) == "" {
			return &MissingEnvironmentIdentifierError{Environment: ids.Environment, Key: key}
		}
	}
	return nil
}
