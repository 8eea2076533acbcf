package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"unicode"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"gwspec/internal/model"
)

const defaultBackendPort = 3000

const reservedNameChars = "{}?#"

var (
	ErrDuplicateService = errors.New("duplicate service name")
	ErrInvalidService   = errors.New("invalid service")
)

// Settings holds the tool configuration. Flags override these values.
// See .env.example for documentation.
type Settings struct {
	LedgerPath   string `env:"LEDGER_PATH" envDefault:"version.txt"`
	OutputDir    string `env:"OUTPUT_DIR" envDefault:"."`
	ServicesFile string `env:"SERVICES_FILE" envDefault:""`
	Format       string `env:"FORMAT" envDefault:"json"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"text"`
}

// AWSSettings mirrors the credential variables read by the original tooling.
type AWSSettings struct {
	AccessKeyID     string `env:"AWS_ACCESS_KEY"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

// HasStaticCredentials reports whether both halves of a key pair are set.
func (a AWSSettings) HasStaticCredentials() bool {
	return strings.TrimSpace(a.AccessKeyID) != "" && strings.TrimSpace(a.SecretAccessKey) != ""
}

type identifierVars struct {
	UserPoolID string `env:"USER_POOL"`
	GatewayURL string `env:"API_GATEWAY_URL"`
	Region     string `env:"API_GATEWAY_REGION"`
	AccountID  string `env:"ACCOUNT_ID"`
	Title      string `env:"API_TITLE"`
}

// LoadDotEnv loads KEY=VALUE pairs from files into the process environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Prefix: "GWSPEC_"}); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

func LoadAWSSettings() (AWSSettings, error) {
	var a AWSSettings
	if err := env.Parse(&a); err != nil {
		return AWSSettings{}, fmt.Errorf("parse aws settings: %w", err)
	}
	return a, nil
}

// Resolve reads the identifier bundle of an environment from variables
// carrying the environment's prefix (DEV_USER_POOL, PROD_ACCOUNT_ID, ...).
// Values are not required here; callers Require what their operation needs.
func Resolve(e model.Environment) (model.Identifiers, error) {
	return resolve(e, env.Options{})
}

// ResolveFrom is Resolve over an explicit variable map instead of the process
// environment.
func ResolveFrom(e model.Environment, vars map[string]string) (model.Identifiers, error) {
	return resolve(e, env.Options{Environment: vars})
}

func resolve(e model.Environment, opts env.Options) (model.Identifiers, error) {
	if !e.Known() {
		return model.Identifiers{}, fmt.Errorf("%w: %s", model.ErrUnknownEnvironment, e)
	}
	opts.Prefix = e.Profile().EnvPrefix

	var raw identifierVars
	if err := env.ParseWithOptions(&raw, opts); err != nil {
		return model.Identifiers{}, fmt.Errorf("resolve %s identifiers: %w", e, err)
	}

	profile := e.Profile()
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = profile.Title
	}
	return model.Identifiers{
		Environment: e,
		Title:       title,
		SchemeName:  profile.SchemeName,
		UserPoolID:  strings.TrimSpace(raw.UserPoolID),
		GatewayURL:  strings.TrimRight(strings.TrimSpace(raw.GatewayURL), "/"),
		Region:      strings.TrimSpace(raw.Region),
		AccountID:   strings.TrimSpace(raw.AccountID),
	}, nil
}

type servicesFile struct {
	Services []model.ServiceConfig `yaml:"services"`
}

// DefaultServices is the built-in service set used when no services file is
// configured.
func DefaultServices() []model.ServiceConfig {
	return []model.ServiceConfig{
		{Name: "index.html", Port: defaultBackendPort},
		{Name: "test", Port: defaultBackendPort, RequiresProxyPath: true, RequiresAuthorization: true},
	}
}

// LoadServices reads the services file. An empty path yields DefaultServices.
func LoadServices(path string) ([]model.ServiceConfig, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultServices(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open services file: %w", err)
	}
	defer f.Close()
	return DecodeServices(f)
}

func DecodeServices(r io.Reader) ([]model.ServiceConfig, error) {
	var sf servicesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode services file: %w", err)
	}
	for i := range sf.Services {
		sf.Services[i].Name = strings.Trim(strings.TrimSpace(sf.Services[i].Name), "/")
	}
	return sf.Services, nil
}

// ValidateServices rejects empty or malformed names, out of range ports and
// duplicate names. Duplicate names would otherwise overwrite each other's routes.
func ValidateServices(services []model.ServiceConfig) error {
	seen := make(map[string]int, len(services))
	for i, svc := range services {
		if svc.Name == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrInvalidService, i)
		}
		if err := validateName(svc.Name); err != nil {
			return fmt.Errorf("%w: %q %v", ErrInvalidService, svc.Name, err)
		}
		if svc.Port < 1 || svc.Port > 65535 {
			return fmt.Errorf("%w: %s has port %d", ErrInvalidService, svc.Name, svc.Port)
		}
		if prev, ok := seen[svc.Name]; ok {
			return fmt.Errorf("%w: %q at entries %d and %d", ErrDuplicateService, svc.Name, prev, i)
		}
		seen[svc.Name] = i
	}
	return nil
}

// validateName accepts slash separated segments free of path template and
// URL delimiter characters. The proxy suffix is added by the synthesizer and
// never belongs in a name.
func validateName(name string) error {
	for _, seg := range strings.Split(name, "/") {
		if seg == "" {
			return errors.New("has an empty path segment")
		}
	}
	for _, r := range name {
		if unicode.IsSpace(r) || strings.ContainsRune(reservedNameChars, r) {
			return fmt.Errorf("contains %q", r)
		}
	}
	return nil
}

// WithBackend fills BackendBaseURL from the environment's gateway URL for
// every service that does not set its own.
func WithBackend(services []model.ServiceConfig, gatewayURL string) []model.ServiceConfig {
	out := make([]model.ServiceConfig, len(services))
	for i, svc := range services {
		if strings.TrimSpace(svc.BackendBaseURL) == "" {
			svc.BackendBaseURL = gatewayURL
		}
		svc.BackendBaseURL = strings.TrimRight(svc.BackendBaseURL, "/")
		out[i] = svc
	}
	return out
}

// NewLogger builds the process logger on w.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		lvl = slog.LevelInfo
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unsupported log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}
