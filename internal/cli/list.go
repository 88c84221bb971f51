package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/zinc/internal/ui"
	"github.com/aidanlsb/zinc/internal/zotero"
)

var listSelection selectionFlags

// listedPaper is one record in the JSON output of list.
type listedPaper struct {
	Key      string   `json:"key"`
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Creator  string   `json:"creator"`
	Year     string   `json:"year"`
	Venue    string   `json:"venue,omitempty"`
	Authors  []string `json:"authors"`
	Tags     []string `json:"tags"`
	Backlink string   `json:"backlink,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the papers a sync would process",
	Long: `Read the Zotero database and print the matching papers without touching
the vault.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listSelection.register(listCmd)
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	opts, err := listSelection.syncOptions(cmd)
	if err != nil {
		return handleOptionsError(err)
	}

	res, err := zotero.Extract(context.Background(), zotero.Options{
		StorePath:      opts.StorePath,
		ItemTypes:      opts.ItemTypes,
		IncludeTrashed: opts.IncludeTrashed,
		Snapshot:       opts.Snapshot,
	})
	if err != nil {
		return handleCoreError(err)
	}

	if isJSONOutput() {
		papers := make([]listedPaper, 0, len(res.Papers))
		for i := range res.Papers {
			p := &res.Papers[i]
			venue, _ := p.Venue()
			papers = append(papers, listedPaper{
				Key:      p.Key,
				Type:     string(p.Type),
				Title:    p.Title(),
				Creator:  p.Creator(),
				Year:     p.YearString(),
				Venue:    venue,
				Authors:  p.Authors,
				Tags:     p.Tags,
				Backlink: p.Backlink,
			})
		}
		warnings := make([]Warning, 0, len(res.Warnings))
		for _, w := range res.Warnings {
			warnings = append(warnings, Warning{Code: w.Code, Message: w.Message, Key: w.Key})
		}
		outputSuccessWithWarnings(map[string]interface{}{"papers": papers}, warnings, &Meta{Count: len(papers)})
		return nil
	}

	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, ui.Warning(w.Message))
	}
	if len(res.Papers) == 0 {
		fmt.Println(ui.Info("No papers found"))
		return nil
	}

	tbl := ui.NewResultsTable(ui.NewDisplayContext(), ui.PaperLayout)
	for i := range res.Papers {
		p := &res.Papers[i]
		tbl.AddRow(p.Title(), p.Creator(), p.YearString(), p.Key)
	}
	fmt.Println(tbl.Render())
	fmt.Println(ui.Hint(ui.Count(tbl.Len(), "paper", "papers")))
	return nil
}
