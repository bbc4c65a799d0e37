package cmd

import (
	"fmt"
	"os"

	"ScrapBoard/internal/export"
	"ScrapBoard/internal/repo/fs"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	exportFlags = struct {
		Format  string
		Flatten int
	}{}

	exportCmd = &cobra.Command{
		Use:   "export <board-id> <out>",
		Short: "Export a saved board as PDF or text",
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
			repo, err := fs.New(cfg.Directory)
			if err != nil {
				return err
			}
			doc, err := repo.LoadDocument(cmd.Context(), id)
			if err != nil {
				return err
			}

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			switch exportFlags.Format {
			case "pdf":
				err = export.PDF(f, doc, export.PDFOptions{Flatten: exportFlags.Flatten})
			case "text":
				err = export.Text(f, doc)
			default:
				err = fmt.Errorf("unknown export format %q", exportFlags.Format)
			}
			if err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			if st, err := os.Stat(args[1]); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", args[1], humanize.Bytes(uint64(st.Size())))
			}
			return nil
		},
	}
)

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.Format, "format", "f", "pdf", "output format: pdf or text")
	exportCmd.Flags().IntVar(&exportFlags.Flatten, "flatten", 0, "draw curves as this many straight pieces")
	root.AddCommand(exportCmd)
}
