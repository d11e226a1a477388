package cmd

import (
	"github.com/bodrovis/json-upload-guard/cmd/upload"
	"github.com/spf13/cobra"
)

var version = "dev"

func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "upload-guard",
		Short: "Check JSON item files before uploading them",
		Long: `upload-guard accepts JSON item files the way the upload dialog does.

It rejects files that are not application/json with a .json extension, reads them
while reporting progress, and validates that every item in the root array carries
a numeric id, a string name and a status of active, inactive or pending.`,
		SilenceUsage:     true,
		SilenceErrors:    true,
		TraverseChildren: true,
	}

	upload.Init(rootCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("upload-guard %s\n", version)
		},
	})

	return rootCmd
}
