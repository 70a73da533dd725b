package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/workopilot/copilot/pkg/api"
	"github.com/workopilot/copilot/pkg/export"
	"github.com/workopilot/copilot/pkg/render"
)

func newExportCommand() *cobra.Command {
	var out string
	var title string

	cmd := &cobra.Command{
		Use:   "export CONVERSATION_ID",
		Short: "Export a conversation as a printable HTML report",
		Long: "Fetches a conversation's history, asks the backend for a structured summary " +
			"and writes a standalone HTML document. Open it in a browser and print to PDF.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			history, err := client.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(history) == 0 {
				return errors.New("conversation has no messages")
			}

			messages := make([]api.ExportMessage, 0, len(history))
			for _, m := range history {
				em := api.ExportMessage{
					Role:      m.Role,
					Content:   m.Content,
					Timestamp: m.CreatedAt.Format("2006-01-02 15:04"),
				}
				if m.Visualization != nil && m.Visualization.Type != "none" {
					em.HasVisualization = true
					em.VisualizationType = m.Visualization.Type
					em.ImageBase64 = m.Visualization.ImageBase64
				}
				messages = append(messages, em)
			}

			resp, err := client.GenerateExportSummary(cmd.Context(), &api.ExportRequest{
				Messages:              messages,
				ExportFormat:          "markdown",
				IncludeVisualizations: true,
				Title:                 title,
			})
			if err != nil {
				return err
			}

			html, err := export.BuildHTML(resp, render.ToHTML)
			if err != nil {
				return err
			}
			if err := export.WriteFile(out, html); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "copilot-export.html", "output file")
	cmd.Flags().StringVar(&title, "title", "", "document title (derived when empty)")

	return cmd
}
