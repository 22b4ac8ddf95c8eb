package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/handiism/memefetch/internal/catalog"
	"github.com/handiism/memefetch/internal/model"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the catalog",
		Long:  `Print every catalog entry with the URL it is downloaded from, in download order.`,
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	memes, err := catalog.Load(settings.CatalogPath)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, e := range memes.Entries() {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.URL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", entryCount(memes))
	return err
}

func entryCount(c *model.Catalog) string {
	if c.Len() == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", c.Len())
}
