package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"gwspec/internal/config"
	"gwspec/internal/gateway"
	"gwspec/internal/model"
	"gwspec/internal/openapi"
	"gwspec/internal/publish"
	"gwspec/internal/ui"
)

// deps are the outside-world collaborators of the commands.
type deps struct {
	newClient func(ctx context.Context, opts gateway.Options) (gateway.Client, error)
	chooser   publish.Chooser
}

func defaultDeps() deps {
	return deps{
		newClient: func(ctx context.Context, opts gateway.Options) (gateway.Client, error) {
			return gateway.NewAWSClient(ctx, opts)
		},
		chooser: ui.NewPicker("gwspec"),
	}
}

// app is the state shared by every command after flags and settings are
// merged.
type app struct {
	deps deps

	envFiles []string
	envName  string
	format   string
	services string
	outDir   string
	ledger   string
	debug    bool

	settings config.Settings
	log      *slog.Logger
}

func newRootCmd(d deps) *cobra.Command {
	a := &app{deps: d}

	root := &cobra.Command{
		Use:   "gwspec",
		Short: "Generate and publish API Gateway OpenAPI documents",
		Long: `gwspec builds a versioned OpenAPI 3.0 document describing the backend
services exposed through an AWS API Gateway, writes it to disk and can import
and deploy it to a REST API stage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	pf.StringVarP(&a.envName, "env", "e", model.Development.String(), "target environment (Development or Production)")
	pf.StringVar(&a.format, "format", "", "artifact format: json or yaml (default from GWSPEC_FORMAT)")
	pf.StringVar(&a.services, "services", "", "services YAML file (default from GWSPEC_SERVICES_FILE, built-in set if empty)")
	pf.StringVarP(&a.outDir, "out", "o", "", "artifact directory (default from GWSPEC_OUTPUT_DIR)")
	pf.StringVar(&a.ledger, "ledger", "", "version ledger file (default from GWSPEC_LEDGER_PATH)")
	pf.BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newGenerateCmd(a),
		newPublishCmd(a),
		newInteractiveCmd(a),
		newInspectCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads dotenv files and settings, then lets explicit flags win.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return err
	}
	s, err := config.LoadSettings()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		s.Format = a.format
	}
	if flags.Changed("services") {
		s.ServicesFile = a.services
	}
	if flags.Changed("out") {
		s.OutputDir = a.outDir
	}
	if flags.Changed("ledger") {
		s.LedgerPath = a.ledger
	}
	if a.debug {
		s.LogLevel = "debug"
	}
	a.settings = s

	log, err := config.NewLogger(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *app) environment() (model.Environment, error) {
	return model.ParseEnvironment(a.envName)
}

func (a *app) artifactFormat() (openapi.Format, error) {
	return openapi.ParseFormat(a.settings.Format)
}

// gatewayClient builds a management client for the environment's region.
func (a *app) gatewayClient(ctx context.Context, ids model.Identifiers) (gateway.Client, error) {
	if err := ids.Require(model.Region); err != nil {
		return nil, err
	}
	creds, err := config.LoadAWSSettings()
	if err != nil {
		return nil, err
	}
	opts := gateway.Options{Region: ids.Region, Logger: a.log}
	if creds.HasStaticCredentials() {
		opts.AccessKeyID = strings.TrimSpace(creds.AccessKeyID)
		opts.SecretAccessKey = strings.TrimSpace(creds.SecretAccessKey)
	}
	client, err := a.deps.newClient(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create gateway client: %w", err)
	}
	return client, nil
}
