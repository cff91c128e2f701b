package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/pkg/buildinfo"
	hio "github.com/matzehuels/hiernet/pkg/io"
)

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(buildinfo.String())
			fmt.Printf("document format: %d\n", hio.Version)
		},
	}
}
