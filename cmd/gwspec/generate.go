package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gwspec/internal/config"
	"gwspec/internal/model"
	"gwspec/internal/pipeline"
)

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Build the next document version and write the artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}
			res, _, err := a.generate(cmd.Context(), env)
			if err != nil {
				return err
			}
			printGenerated(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

// generate resolves the environment and runs the pipeline.
func (a *app) generate(ctx context.Context, env model.Environment) (pipeline.Result, model.Identifiers, error) {
	ids, err := config.Resolve(env)
	if err != nil {
		return pipeline.Result{}, model.Identifiers{}, err
	}
	services, err := config.LoadServices(a.settings.ServicesFile)
	if err != nil {
		return pipeline.Result{}, ids, err
	}
	format, err := a.artifactFormat()
	if err != nil {
		return pipeline.Result{}, ids, err
	}

	res, err := pipeline.New(a.log).Run(ctx, pipeline.Request{
		Identifiers: ids,
		Services:    services,
		LedgerPath:  a.settings.LedgerPath,
		OutputDir:   a.settings.OutputDir,
		Format:      format,
	})
	return res, ids, err
}

func printGenerated(w io.Writer, res pipeline.Result) {
	fmt.Fprintf(w, "wrote %s (version %s, %d paths)\n", res.ArtifactPath, res.Version, res.Document.Paths.Len())
	if !res.VersionPersisted {
		fmt.Fprintln(w, "warning: version ledger was not updated; the next run may reuse this version")
	}
}
