package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gwspec/internal/model"
	"gwspec/internal/publish"
)

const (
	actionDownload = "Download (write the document only)"
	actionUpload   = "Upload (write, import and deploy)"
)

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Choose environment, action, API and stage from prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			chooser := a.deps.chooser
			if chooser == nil {
				return publish.ErrNoChooser
			}

			envs := model.Environments()
			names := make([]string, len(envs))
			for i, e := range envs {
				names[i] = e.String()
			}
			idx, err := chooser.Choose(ctx, "Select an environment", names)
			if err != nil {
				return err
			}
			if idx < 0 || idx >= len(envs) {
				return fmt.Errorf("%w: %d", publish.ErrBadSelection, idx)
			}
			env := envs[idx]

			actions := []string{actionDownload, actionUpload}
			act, err := chooser.Choose(ctx, "Select an action", actions)
			if err != nil {
				return err
			}
			if act < 0 || act >= len(actions) {
				return fmt.Errorf("%w: %d", publish.ErrBadSelection, act)
			}

			res, ids, err := a.generate(ctx, env)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printGenerated(out, res)
			if actions[act] == actionDownload {
				return nil
			}
			return a.publish(ctx, out, ids, res.Document, res.Body, publish.Target{}, false)
		},
	}
}
