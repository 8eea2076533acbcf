package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gwspec/internal/openapi"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <artifact>",
		Short: "Print the route table of an artifact (file path or http(s) URL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := openapi.LoadArtifact(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			routes, err := openapi.ExtractRoutes(doc)
			if err != nil {
				return err
			}
			a.log.Debug("artifact loaded", "location", args[0], "paths", len(routes))

			w := cmd.OutOrStdout()
			title, version := "", ""
			if doc.Info != nil {
				title, version = doc.Info.Title, doc.Info.Version
			}
			fmt.Fprintf(w, "%s %s (openapi %s)\n\n", title, version, doc.OpenAPI)

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tMETHODS\tAUTH\tINTEGRATION\tURI")
			for _, r := range routes {
				auth := "-"
				if r.Secured {
					auth = strings.Join(r.SchemeNames, ",")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Path, strings.Join(r.Methods, ","), auth, r.IntegrationType, r.URI)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return openapi.CheckSecurity(doc)
		},
	}
}
