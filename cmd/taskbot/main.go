package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "taskbot",
		Short:         "Chat task tracker with board sync",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newHashPasswordCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Printf("taskbot: %v", err)
		os.Exit(1)
	}
}
