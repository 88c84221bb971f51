package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// storeSchema mirrors the subset of the reference manager's schema that zinc reads.
const storeSchema = `
CREATE TABLE itemTypes (itemTypeID INTEGER PRIMARY KEY, typeName TEXT NOT NULL UNIQUE);
CREATE TABLE items (itemID INTEGER PRIMARY KEY, itemTypeID INTEGER NOT NULL, key TEXT NOT NULL UNIQUE);
CREATE TABLE fields (fieldID INTEGER PRIMARY KEY, fieldName TEXT NOT NULL UNIQUE);
CREATE TABLE itemDataValues (valueID INTEGER PRIMARY KEY, value TEXT UNIQUE);
CREATE TABLE itemData (itemID INTEGER, fieldID INTEGER, valueID INTEGER, PRIMARY KEY (itemID, fieldID));
CREATE TABLE tags (tagID INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE);
CREATE TABLE itemTags (itemID INTEGER NOT NULL, tagID INTEGER NOT NULL, type INTEGER NOT NULL DEFAULT 0, PRIMARY KEY (itemID, tagID, type));
CREATE TABLE creators (creatorID INTEGER PRIMARY KEY, firstName TEXT, lastName TEXT, fieldMode INTEGER);
CREATE TABLE itemCreators (itemID INTEGER NOT NULL, creatorID INTEGER NOT NULL, creatorTypeID INTEGER NOT NULL DEFAULT 1, orderIndex INTEGER NOT NULL DEFAULT 0, PRIMARY KEY (itemID, creatorID, creatorTypeID, orderIndex));
CREATE TABLE itemAttachments (itemID INTEGER PRIMARY KEY, parentItemID INTEGER, linkMode INTEGER, contentType TEXT, path TEXT);
CREATE TABLE deletedItems (itemID INTEGER PRIMARY KEY, dateDeleted TEXT DEFAULT CURRENT_TIMESTAMP);
`

var fixtureItemTypes = []string{
	"note", "book", "bookSection", "journalArticle", "attachment",
	"report", "thesis", "conferencePaper", "preprint", "webpage",
}

// TestStore is a reference-manager database fixture on disk.
type TestStore struct {
	Path string
	t    *testing.T
	db   *sql.DB
}

// NewTestStore creates an empty store with the fixed schema and item types.
func NewTestStore(t *testing.T) *TestStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "zotero.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open fixture store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := &TestStore{Path: path, t: t, db: db}
	s.exec(storeSchema)
	for i, name := range fixtureItemTypes {
		s.exec(`INSERT INTO itemTypes (itemTypeID, typeName) VALUES (?, ?)`, i+1, name)
	}
	return s
}

// DB exposes the fixture connection for ad hoc statements.
func (s *TestStore) DB() *sql.DB {
	return s.db
}

// AddItem inserts an item of the given type and returns its id.
func (s *TestStore) AddItem(typeName, key string) int64 {
	s.t.Helper()
	res := s.exec(`INSERT INTO items (itemTypeID, key)
		SELECT itemTypeID, ? FROM itemTypes WHERE typeName = ?`, key, typeName)
	id, err := res.LastInsertId()
	if err != nil {
		s.t.Fatalf("failed to read item id: %v", err)
	}
	return id
}

// SetField stores a field value for an item, creating the field and value rows as needed.
func (s *TestStore) SetField(itemID int64, field, value string) {
	s.t.Helper()
	s.exec(`INSERT OR IGNORE INTO fields (fieldName) VALUES (?)`, field)
	s.exec(`INSERT OR IGNORE INTO itemDataValues (value) VALUES (?)`, value)
	s.exec(`INSERT OR REPLACE INTO itemData (itemID, fieldID, valueID)
		SELECT ?, f.fieldID, v.valueID FROM fields f, itemDataValues v
		WHERE f.fieldName = ? AND v.value = ?`, itemID, field, value)
}

// AddTag attaches a tag to an item. The type column lets the same name be
// attached twice, as the real store allows for manual and automatic tags.
func (s *TestStore) AddTag(itemID int64, name string, tagType int) {
	s.t.Helper()
	s.exec(`INSERT OR IGNORE INTO tags (name) VALUES (?)`, name)
	s.exec(`INSERT INTO itemTags (itemID, tagID, type)
		SELECT ?, tagID, ? FROM tags WHERE name = ?`, itemID, tagType, name)
}

// AddCreator adds a creator at the given position.
func (s *TestStore) AddCreator(itemID int64, first, last string, orderIndex int) {
	s.t.Helper()
	res := s.exec(`INSERT INTO creators (firstName, lastName, fieldMode) VALUES (?, ?, 0)`, first, last)
	creatorID, err := res.LastInsertId()
	if err != nil {
		s.t.Fatalf("failed to read creator id: %v", err)
	}
	s.exec(`INSERT INTO itemCreators (itemID, creatorID, orderIndex) VALUES (?, ?, ?)`, itemID, creatorID, orderIndex)
}

// AddAttachment adds an attachment item under parentID and returns its id.
func (s *TestStore) AddAttachment(parentID int64, key, contentType string) int64 {
	s.t.Helper()
	id := s.AddItem("attachment", key)
	s.exec(`INSERT INTO itemAttachments (itemID, parentItemID, linkMode, contentType, path)
		VALUES (?, ?, 0, ?, ?)`, id, parentID, contentType, "storage:"+key+".pdf")
	return id
}

// Trash moves an item to the trash.
func (s *TestStore) Trash(itemID int64) {
	s.t.Helper()
	s.exec(`INSERT INTO deletedItems (itemID) VALUES (?)`, itemID)
}

func (s *TestStore) exec(query string, args ...any) sql.Result {
	s.t.Helper()
	res, err := s.db.Exec(query, args...)
	if err != nil {
		s.t.Fatalf("fixture statement failed: %v\n%s", err, query)
	}
	return res
}
