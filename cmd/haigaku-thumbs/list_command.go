package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/library"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/mediatypes"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list DIR",
		Short: "List the media files of a dataset directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := library.Scan(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range paths {
				fmt.Fprintf(out, "%-6s %-18s %s\n", mediatypes.Classify(path), mediatypes.MimeType(path), path)
			}
			fmt.Fprintf(out, "%d media files\n", len(paths))
			return nil
		},
	}
}
