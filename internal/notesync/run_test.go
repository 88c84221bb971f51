package notesync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aidanlsb/zinc/internal/note"
	"github.com/aidanlsb/zinc/internal/testutil"
	"github.com/aidanlsb/zinc/internal/zotero"
)

func seedStore(t *testing.T) *testutil.TestStore {
	t.Helper()
	store := testutil.NewTestStore(t)

	article := store.AddItem("journalArticle", "LOVE1843")
	store.SetField(article, "title", "Notes on the Analytical Engine")
	store.SetField(article, "publicationTitle", "Annals of Computing")
	store.SetField(article, "date", "1843-10-01")
	store.AddCreator(article, "Ada", "Lovelace", 0)
	store.AddCreator(article, "Charles", "Babbage", 1)
	store.AddTag(article, "bar", 0)

	conf := store.AddItem("conferencePaper", "TURING50")
	store.SetField(conf, "title", "Computing Machinery: and Intelligence")
	store.SetField(conf, "conferenceName", "Mind: A Quarterly Review")
	store.AddCreator(conf, "Alan", "Turing", 0)
	store.AddAttachment(conf, "PDFA0001", "application/pdf")
	store.AddAttachment(conf, "PDFA0002", "application/pdf")

	return store
}

func TestRun(t *testing.T) {
	store := seedStore(t)
	vault := testutil.NewTestVault(t).Build()

	var records []string
	extracted := -1
	summary, err := Run(context.Background(), Options{
		StorePath:   store.Path,
		VaultPath:   vault.Path,
		OnExtracted: func(total int) { extracted = total },
		OnRecord: func(r Record) {
			records = append(records, r.Paper.Key+":"+string(r.Outcome))
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Processed != 2 || summary.Created != 2 || summary.Synced() != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if extracted != 2 {
		t.Errorf("OnExtracted got %d, want 2", extracted)
	}
	if strings.Join(records, " ") != "LOVE1843:created TURING50:created" {
		t.Errorf("records = %v", records)
	}
	if len(summary.Warnings) != 1 || summary.Warnings[0].Code != zotero.WarnMultiplePDFs {
		t.Errorf("warnings = %+v", summary.Warnings)
	}

	vault.AssertDirExists(DefaultSubfolder)
	vault.AssertFileContains("Academic Papers/Notes on the Analytical Engine.md", "creator: Lovelace et al.\n")
	vault.AssertFileContains("Academic Papers/Computing Machinery- and Intelligence.md", "venue: Mind\n")
	vault.AssertFileContains("Academic Papers/Computing Machinery- and Intelligence.md",
		"- PDF: [Open in Zotero](zotero://open-pdf/library/items/PDFA0001)")
}

func TestRunIsIdempotent(t *testing.T) {
	store := seedStore(t)
	vault := testutil.NewTestVault(t).Build()
	opts := Options{StorePath: store.Path, VaultPath: vault.Path, Subfolder: "Papers"}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := vault.ReadFile("Papers/Notes on the Analytical Engine.md")

	summary, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Unchanged != 2 || summary.Created+summary.Updated != 0 {
		t.Errorf("second run summary: %+v", summary)
	}
	if after := vault.ReadFile("Papers/Notes on the Analytical Engine.md"); after != before {
		t.Errorf("note changed on second run\n--- before ---\n%s\n--- after ---\n%s", before, after)
	}
}

func TestRunTagsNeverLost(t *testing.T) {
	store := seedStore(t)
	vault := testutil.NewTestVault(t).
		WithFile("Academic Papers/Notes on the Analytical Engine.md", "---\ntags: [foo]\n---\n\n## Notes\nremember to reread §3\n").
		Build()

	if _, err := Run(context.Background(), Options{StorePath: store.Path, VaultPath: vault.Path}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	doc := note.Parse(vault.ReadFile("Academic Papers/Notes on the Analytical Engine.md"))
	if strings.Join(doc.Tags, ",") != "bar,foo" {
		t.Errorf("tags = %v", doc.Tags)
	}
	if notes, _ := doc.Section(note.SectionNotes); notes != "remember to reread §3" {
		t.Errorf("notes = %q", notes)
	}

	// Dropping the tag from the store keeps it in the note.
	if _, err := store.DB().Exec(`DELETE FROM itemTags`); err != nil {
		t.Fatal(err)
	}
	if _, err := Run(context.Background(), Options{StorePath: store.Path, VaultPath: vault.Path}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	doc = note.Parse(vault.ReadFile("Academic Papers/Notes on the Analytical Engine.md"))
	if strings.Join(doc.Tags, ",") != "bar,foo" {
		t.Errorf("tags after store removal = %v", doc.Tags)
	}
}

func TestRunContinuesAfterRecordFailure(t *testing.T) {
	store := seedStore(t)
	vault := testutil.NewTestVault(t).Build()

	// A directory where the first note should be makes that record fail.
	blocked := filepath.Join(vault.Path, DefaultSubfolder, "Notes on the Analytical Engine.md")
	if err := os.MkdirAll(blocked, 0o755); err != nil {
		t.Fatal(err)
	}

	summary, err := Run(context.Background(), Options{StorePath: store.Path, VaultPath: vault.Path})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 2 || summary.Failed != 1 || summary.Created != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Key != "LOVE1843" {
		t.Errorf("errors = %+v", summary.Errors)
	}
	vault.AssertFileExists("Academic Papers/Computing Machinery- and Intelligence.md")
}

func TestRunTitleCollision(t *testing.T) {
	store := testutil.NewTestStore(t)
	a := store.AddItem("book", "BOOK0001")
	store.SetField(a, "title", "What: Is Life")
	b := store.AddItem("book", "BOOK0002")
	store.SetField(b, "title", "What/ Is Life")
	vault := testutil.NewTestVault(t).Build()

	summary, err := Run(context.Background(), Options{StorePath: store.Path, VaultPath: vault.Path})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Warnings) != 1 || summary.Warnings[0].Code != WarnTitleCollision {
		t.Fatalf("warnings = %+v", summary.Warnings)
	}
	vault.AssertFileContains("Academic Papers/What- Is Life.md", "zotero-key: BOOK0002\n")
}

func TestRunConfigurationErrors(t *testing.T) {
	store := seedStore(t)
	vault := testutil.NewTestVault(t).Build()

	t.Run("missing store", func(t *testing.T) {
		_, err := Run(context.Background(), Options{
			StorePath: filepath.Join(vault.Path, "nope.sqlite"),
			VaultPath: vault.Path,
		})
		if !errors.Is(err, zotero.ErrStoreNotFound) {
			t.Errorf("err = %v", err)
		}
		vault.AssertFileNotExists(DefaultSubfolder)
	})

	t.Run("missing vault", func(t *testing.T) {
		_, err := Run(context.Background(), Options{
			StorePath: store.Path,
			VaultPath: filepath.Join(vault.Path, "nope"),
		})
		if !errors.Is(err, ErrVaultNotFound) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestRunDryRun(t *testing.T) {
	store := seedStore(t)
	vault := testutil.NewTestVault(t).Build()

	summary, err := Run(context.Background(), Options{StorePath: store.Path, VaultPath: vault.Path, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Created != 2 || !summary.DryRun {
		t.Errorf("summary = %+v", summary)
	}
	vault.AssertFileNotExists(DefaultSubfolder)
}

func TestRunCancelled(t *testing.T) {
	store := seedStore(t)
	vault := testutil.NewTestVault(t).Build()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{StorePath: store.Path, VaultPath: vault.Path})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
