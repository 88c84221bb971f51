package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/zinc/internal/filenames"
	"github.com/aidanlsb/zinc/internal/note"
	"github.com/aidanlsb/zinc/internal/notesync"
	"github.com/aidanlsb/zinc/internal/ui"
)

var (
	showRaw       bool
	showFilenames string
)

var showCmd = &cobra.Command{
	Use:   "show <title>",
	Short: "Render a paper's note in the terminal",
	Long: `Find the note for a paper title and render it as formatted markdown.

The title is mapped to a file name the same way sync does, so punctuation that
is not allowed in file names does not need to be typed exactly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the note without rendering")
	showCmd.Flags().StringVar(&showFilenames, "filenames", "", "Note naming: title or slug (overrides filenames)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	style, err := getConfig().FilenameStyle()
	if err != nil {
		return handleOptionsError(err)
	}
	if showFilenames != "" {
		if style, err = filenames.ParseStyle(showFilenames); err != nil {
			return handleOptionsError(err)
		}
	}

	dir := notesync.NotesDir(getVaultPath(), getSubfolder())
	path := filepath.Join(dir, style.FileName(title))

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return handleErrorMsg(ErrNoteNotFound,
			fmt.Sprintf("no note for %q in %s", title, dir),
			"Run 'zinc list' to see paper titles, or 'zinc sync' to create the notes")
	}
	if err != nil {
		return handleError(ErrFileReadError, err, "")
	}

	doc := note.Parse(string(content))

	if isJSONOutput() {
		data := map[string]interface{}{
			"path":    path,
			"tags":    doc.Tags,
			"content": string(content),
		}
		if doc.HeaderErr != nil {
			data["header_error"] = doc.HeaderErr.Error()
		}
		outputSuccess(data, nil)
		return nil
	}

	if showRaw {
		fmt.Print(string(content))
		return nil
	}

	display := ui.NewDisplayContext()
	fmt.Println(ui.FilePath(path))
	if len(doc.Tags) > 0 {
		fmt.Println(ui.Hint("tags: " + strings.Join(doc.Tags, ", ")))
	}
	rendered, err := ui.RenderMarkdown(noteBody(string(content)), display.AvailableWidth(ui.MarkdownRenderMargin*2))
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	fmt.Print(rendered)
	return nil
}

// noteBody strips the header block so only the sections are rendered.
func noteBody(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if end, ok := note.HeaderBounds(lines); ok && end >= 0 {
		return strings.Join(lines[end+1:], "\n")
	}
	return content
}
