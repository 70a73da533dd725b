package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/workopilot/copilot/pkg/api"
	"github.com/workopilot/copilot/pkg/attachments"
)

func newAssetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage portfolio holdings",
	}
	cmd.AddCommand(newAssetsListCommand())
	cmd.AddCommand(newAssetsAddCommand())
	cmd.AddCommand(newAssetsRemoveCommand())
	return cmd
}

func newAssetsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List holdings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			list, err := client.Assets(cmd.Context())
			if err != nil {
				return err
			}
			if list.Count == 0 {
				fmt.Println("no assets")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tQUANTITY\tAVG PRICE\tCURRENCY\tTYPE\tPORTFOLIO")
			for _, a := range list.Assets {
				fmt.Fprintf(w, "%s\t%g\t%g\t%s\t%s\t%s\n",
					a.Symbol, a.Quantity, a.AvgBuyPrice, a.Currency, a.InvestmentType, a.PortfolioName)
			}
			return w.Flush()
		},
	}
}

func newAssetsAddCommand() *cobra.Command {
	var asset api.AssetCreate
	var files []string

	cmd := &cobra.Command{
		Use:   "add SYMBOL",
		Short: "Register a holding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			asset.Symbol = strings.ToUpper(args[0])

			var atts []*attachments.Attachment
			if len(files) > 0 {
				selections := make([]attachments.File, 0, len(files))
				for _, path := range files {
					f, err := attachments.FromPath(path)
					if err != nil {
						return err
					}
					selections = append(selections, f)
				}
				atts = attachments.Validate(selections)
			}

			created, err := client.CreateAsset(cmd.Context(), asset, atts)
			if err != nil {
				return err
			}
			fmt.Printf("added %s (%g @ %g %s)\n",
				created.Symbol, created.Quantity, created.AvgBuyPrice, created.Currency)
			return nil
		},
	}

	cmd.Flags().Float64Var(&asset.Quantity, "quantity", 0, "number of units held")
	cmd.Flags().Float64Var(&asset.AvgBuyPrice, "avg-buy-price", 0, "average purchase price per unit")
	cmd.Flags().StringVar(&asset.PurchaseDate, "purchase-date", "", "purchase date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&asset.PortfolioName, "portfolio", "", "portfolio name")
	cmd.Flags().StringVar(&asset.Currency, "currency", "USD", "currency code")
	cmd.Flags().StringVar(&asset.Broker, "broker", "", "broker name")
	cmd.Flags().StringVar(&asset.InvestmentType, "type", "Stock", "investment type")
	cmd.Flags().StringVar(&asset.AdditionalInfo, "notes", "", "additional notes")
	cmd.Flags().StringVar(&asset.Exchange, "exchange", "", "exchange")
	cmd.Flags().StringSliceVar(&files, "file", nil, "supporting document (repeatable)")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("avg-buy-price")

	return cmd
}

func newAssetsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove SYMBOL",
		Short: "Delete a holding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			resp, err := client.DeleteAsset(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("removed %s\n", resp.Deleted)
			return nil
		},
	}
}
