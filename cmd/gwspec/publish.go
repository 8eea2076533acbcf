package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"

	"gwspec/internal/config"
	"gwspec/internal/model"
	"gwspec/internal/openapi"
	"gwspec/internal/probe"
	"gwspec/internal/publish"
)

type publishFlags struct {
	apiID    string
	stage    string
	artifact string
	verify   bool
}

func newPublishCmd(a *app) *cobra.Command {
	var f publishFlags

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Generate (or reuse) a document, import it and deploy a stage",
		Long: `Publish overwrites a REST API with the document and deploys it to a stage.
Without --artifact a new version is generated first. Missing --api-id or
--stage values are chosen interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := a.environment()
			if err != nil {
				return err
			}

			var (
				doc  *openapi3.T
				body []byte
				ids  model.Identifiers
			)
			if f.artifact != "" {
				if ids, err = config.Resolve(env); err != nil {
					return err
				}
				if doc, body, err = readArtifact(ctx, f.artifact); err != nil {
					return err
				}
			} else {
				res, resolved, err := a.generate(ctx, env)
				if err != nil {
					return err
				}
				printGenerated(cmd.OutOrStdout(), res)
				doc, body, ids = res.Document, res.Body, resolved
			}

			return a.publish(ctx, cmd.OutOrStdout(), ids, doc, body, publish.Target{APIID: f.apiID, Stage: f.stage}, f.verify)
		},
	}

	cmd.Flags().StringVar(&f.apiID, "api-id", "", "REST API id or name (prompted when empty)")
	cmd.Flags().StringVar(&f.stage, "stage", "", "stage name (prompted when empty)")
	cmd.Flags().StringVar(&f.artifact, "artifact", "", "publish an existing artifact instead of generating")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "send CORS preflight requests to the deployed stage")
	return cmd
}

// readArtifact loads an artifact from disk and checks it before it is sent.
func readArtifact(ctx context.Context, path string) (*openapi3.T, []byte, error) {
	// #nosec G304 - path is an operator supplied flag
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read artifact: %w", err)
	}
	doc, err := openapi.Parse(ctx, body)
	if err != nil {
		return nil, nil, err
	}
	if err := openapi.CheckSecurity(doc); err != nil {
		return nil, nil, err
	}
	return doc, body, nil
}

func (a *app) publish(ctx context.Context, w io.Writer, ids model.Identifiers, doc *openapi3.T, body []byte, target publish.Target, verify bool) error {
	client, err := a.gatewayClient(ctx, ids)
	if err != nil {
		return err
	}
	res, err := publish.NewPublisher(client, a.deps.chooser, a.log).Publish(ctx, body, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "deployed %s to stage %s (deployment %s)\n", res.API, res.Stage, res.DeploymentID)

	if !verify {
		return nil
	}
	routes, err := openapi.ExtractRoutes(doc)
	if err != nil {
		return err
	}
	results := probe.New(probe.InvokeURL(res.API.ID, ids.Region, res.Stage)).Run(ctx, routes)
	return printProbe(w, results)
}

func printProbe(w io.Writer, results []probe.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "URL\tSTATUS\tALLOW-ORIGIN\tTIME\tRESULT")
	for _, r := range results {
		target := r.URL
		if target == "" {
			target = r.Path
		}
		status := r.Status
		verdict := "ok"
		switch {
		case r.Err != nil:
			status = "-"
			verdict = r.Err.Error()
		case !r.OK():
			verdict = "no cors"
		}
		elapsed := r.Elapsed.Round(time.Millisecond)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", target, status, r.AllowOrigin, elapsed, verdict)
	}
	return tw.Flush()
}
