package cmd

import (
	"fmt"
	"strings"
	"time"

	"ScrapBoard/internal/net"

	"github.com/spf13/cobra"
)

var (
	discoverFlags = struct {
		Timeout time.Duration
	}{}

	discoverCmd = &cobra.Command{
		Use:   "discover",
		Short: "List boards served on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return net.Browse(discoverFlags.Timeout, func(p net.Peer) {
				fmt.Fprintf(out, "%s\tws://%s/ws\t%s\n", p.Name, p.Addr, strings.Join(p.Info, " "))
			})
		},
	}
)

func init() {
	discoverCmd.Flags().DurationVar(&discoverFlags.Timeout, "timeout", 2*time.Second, "how long to listen for announcements")
	root.AddCommand(discoverCmd)
}
