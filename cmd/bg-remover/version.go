package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	bgremover "github.com/menta2k/bg-remover"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bg-remover %s (%s %s/%s)\n",
				bgremover.GetVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
