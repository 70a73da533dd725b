package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/workopilot/copilot/pkg/attachments"
)

func newIngestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest FILE...",
		Short: "Upload documents for retrieval-augmented answers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			selections := make([]attachments.File, 0, len(args))
			for _, path := range args {
				f, err := attachments.FromPath(path)
				if err != nil {
					return err
				}
				selections = append(selections, f)
			}
			atts := attachments.Validate(selections)
			if len(atts) == 0 {
				return errors.New("no supported files to ingest (csv, xls, xlsx, pdf, txt, md)")
			}
			if len(atts) < len(selections) {
				fmt.Printf("skipping %d unsupported file(s)\n", len(selections)-len(atts))
			}

			result, err := client.IngestDocuments(cmd.Context(), atts)
			if err != nil {
				return err
			}

			for _, f := range result.Ingested {
				fmt.Printf("  %s: %d chunks\n", f.File, f.Chunks)
			}
			for _, e := range result.Errors {
				fmt.Printf("  %s: %s\n", e.File, e.Error)
			}
			fmt.Printf("%d of %d file(s) ingested\n", result.Successful, result.TotalFiles)
			return nil
		},
	}
}
