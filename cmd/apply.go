package cmd

import (
	"fmt"

	"ScrapBoard/internal/history"
	"ScrapBoard/internal/logging"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <board-id> <journal>",
	Short: "Replay a command journal onto a board and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		id, err := parseDocumentID(args[0])
		if err != nil {
			return err
		}
		journal, err := history.OpenJournal(args[1])
		if err != nil {
			return err
		}
		entries, err := journal.ReadAll()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		sess, err := openSession(ctx, cfg, id)
		if err != nil {
			return err
		}
		go sess.logErrors(ctx)

		for _, e := range entries {
			if err := offer(sess.store, e); err != nil {
				sess.store.Stop()
				return err
			}
		}
		if err := sess.close(ctx); err != nil {
			return err
		}

		logging.Logger().Info("[JOURNAL] applied", "board", id, "entries", len(entries))
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d entries to board %d\n", len(entries), id)
		return nil
	},
}

func init() {
	root.AddCommand(applyCmd)
}
