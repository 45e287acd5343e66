package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/subplay/subplay/internal/catalog"
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("json", false, "Print the catalog as JSON")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the videos and subtitles that can be served",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lister, _, err := openMedia(cmd.Context(), afero.NewOsFs(), appConfig)
		if err != nil {
			return err
		}
		cat, err := catalog.Scan(cmd.Context(), lister)
		if err != nil {
			return err
		}
		return printCatalog(cmd.OutOrStdout(), cat, lo.Must(cmd.Flags().GetBool("json")))
	},
}

func printCatalog(w io.Writer, cat *catalog.Catalog, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cat)
	}

	sections := []struct {
		title string
		names []string
	}{
		{"Videos", cat.Videos},
		{"Subtitles", cat.Subtitles},
	}
	for _, section := range sections {
		if _, err := fmt.Fprintf(w, "%s (%d):\n", section.title, len(section.names)); err != nil {
			return err
		}
		for i, name := range section.names {
			if _, err := fmt.Fprintf(w, "  %d. %s\n", i+1, name); err != nil {
				return err
			}
		}
	}
	return nil
}
