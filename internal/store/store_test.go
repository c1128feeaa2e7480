package store

import (
	"testing"

	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/soyeahso/arena/internal/scholar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testKey() domain.SessionKey {
	return domain.SessionKey{Surface: "cli", ChatID: "local"}
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	tables := []string{"sessions", "turns", "papers", "papers_fts"}
	for _, table := range tables {
		var name string
		err := db.sql.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

// --- Session store tests ---

func TestSessionStore_GetOrCreate_New(t *testing.T) {
	ss := NewSQLiteSessionStore(testDB(t))

	sess := ss.GetOrCreate(testKey())
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "cli", sess.Key.Surface)
	assert.Equal(t, "local", sess.Key.ChatID)
}

func TestSessionStore_GetOrCreate_Existing(t *testing.T) {
	ss := NewSQLiteSessionStore(testDB(t))

	first := ss.GetOrCreate(testKey())
	second := ss.GetOrCreate(testKey())
	assert.Equal(t, first.ID, second.ID)

	other := ss.GetOrCreate(domain.SessionKey{Surface: "gateway", ChatID: "abc"})
	assert.NotEqual(t, first.ID, other.ID)
}

func TestSessionStore_AppendAndGet(t *testing.T) {
	ss := NewSQLiteSessionStore(testDB(t))
	sess := ss.GetOrCreate(testKey())

	ss.Append(sess.ID, domain.Turn{Role: domain.RoleUser, Content: "find papers on attention"})
	ss.Append(sess.ID, domain.Turn{
		Role:     domain.RoleModel,
		Content:  "Searching now.",
		ToolName: "search_papers",
		ToolArgs: `{"query":"attention"}`,
	})
	ss.Append(sess.ID, domain.Turn{
		Role:     domain.RoleTool,
		Content:  "1. Attention Is All You Need",
		ToolName: "search_papers",
	})

	loaded := ss.Get(sess.ID)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Turns, 3)
	assert.Equal(t, domain.RoleUser, loaded.Turns[0].Role)
	assert.Equal(t, "search_papers", loaded.Turns[1].ToolName)
	assert.Equal(t, `{"query":"attention"}`, loaded.Turns[1].ToolArgs)
	assert.Equal(t, domain.RoleTool, loaded.Turns[2].Role)
}

func TestSessionStore_History(t *testing.T) {
	ss := NewSQLiteSessionStore(testDB(t))
	sess := ss.GetOrCreate(testKey())

	ss.Append(sess.ID, domain.Turn{Role: domain.RoleUser, Content: "hello"})
	ss.Append(sess.ID, domain.Turn{
		Role:     domain.RoleModel,
		ToolName: "search_papers",
		ToolArgs: `{"query":"x"}`,
	})
	ss.Append(sess.ID, domain.Turn{
		Role:     domain.RoleTool,
		Content:  "results",
		ToolName: "search_papers",
		IsError:  true,
	})

	msgs := ss.History(sess.ID)
	require.Len(t, msgs, 3)
	assert.Equal(t, llm.RoleUser, msgs[0].Role)
	require.Len(t, msgs[1].ToolCalls, 1)
	assert.Equal(t, "search_papers", msgs[1].ToolCalls[0].Name)
	require.Len(t, msgs[2].ToolResults, 1)
	assert.True(t, msgs[2].ToolResults[0].IsError)
}

func TestSessionStore_TurnFilesRoundTrip(t *testing.T) {
	ss := NewSQLiteSessionStore(testDB(t))
	sess := ss.GetOrCreate(testKey())

	ss.Append(sess.ID, domain.Turn{
		Role:    domain.RoleUser,
		Content: "analyze this",
		Files: []domain.Attachment{
			{URI: "files/abc123", MimeType: "application/pdf", Filename: "paper.pdf"},
		},
	})

	loaded := ss.Get(sess.ID)
	require.Len(t, loaded.Turns, 1)
	require.Len(t, loaded.Turns[0].Files, 1)
	assert.Equal(t, "files/abc123", loaded.Turns[0].Files[0].URI)
}

func TestSessionStore_GetUnknownReturnsNil(t *testing.T) {
	ss := NewSQLiteSessionStore(testDB(t))
	assert.Nil(t, ss.Get("no-such-session"))
}

func TestSessionStore_List(t *testing.T) {
	ss := NewSQLiteSessionStore(testDB(t))
	a := ss.GetOrCreate(domain.SessionKey{Surface: "cli", ChatID: "a"})
	b := ss.GetOrCreate(domain.SessionKey{Surface: "cli", ChatID: "b"})

	ids := ss.List()
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)
}

// --- Library tests ---

func samplePapers() []scholar.Paper {
	return []scholar.Paper{
		{
			ArxivID:  "1706.03762",
			Title:    "Attention Is All You Need",
			Authors:  []string{"Ashish Vaswani"},
			Abstract: "We propose the Transformer, based solely on attention mechanisms.",
			Year:     2017,
		},
		{
			DOI:      "10.1038/nature14539",
			Title:    "Deep learning",
			Authors:  []string{"Yann LeCun", "Yoshua Bengio", "Geoffrey Hinton"},
			Abstract: "Deep learning allows computational models to learn representations of data.",
			Year:     2015,
			Venue:    "Nature",
		},
	}
}

func TestLibrary_SaveAndSearch(t *testing.T) {
	lib := NewLibrary(testDB(t))
	require.NoError(t, lib.SaveAll(samplePapers()))

	papers, err := lib.Search("transformer attention", 10)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "Attention Is All You Need", papers[0].Title)
	assert.Equal(t, []string{"Ashish Vaswani"}, papers[0].Authors)
	assert.Equal(t, "1706.03762", papers[0].ArxivID)
}

func TestLibrary_SaveIsUpsert(t *testing.T) {
	lib := NewLibrary(testDB(t))
	paper := samplePapers()[0]

	require.NoError(t, lib.Save(paper))
	paper.Abstract = "Updated abstract about self-attention."
	require.NoError(t, lib.Save(paper))

	n, err := lib.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	papers, err := lib.Search("self-attention", 10)
	require.NoError(t, err)
	require.Len(t, papers, 1)
}

func TestLibrary_SearchQuotesInput(t *testing.T) {
	lib := NewLibrary(testDB(t))
	require.NoError(t, lib.SaveAll(samplePapers()))

	// FTS5 operators in user input must not cause a query error
	_, err := lib.Search(`attention AND "NOT (`, 10)
	assert.NoError(t, err)
}

func TestLibrary_Recent(t *testing.T) {
	lib := NewLibrary(testDB(t))
	require.NoError(t, lib.SaveAll(samplePapers()))

	papers, err := lib.Recent(1)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "Deep learning", papers[0].Title)
}

func TestLibrary_Delete(t *testing.T) {
	lib := NewLibrary(testDB(t))
	require.NoError(t, lib.SaveAll(samplePapers()))

	require.NoError(t, lib.Delete("arxiv:1706.03762"))
	n, err := lib.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	papers, err := lib.Search("transformer", 10)
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestPaperKey(t *testing.T) {
	assert.Equal(t, "arxiv:1706.03762", paperKey(scholar.Paper{ArxivID: "1706.03762", DOI: "10.1/x"}))
	assert.Equal(t, "doi:10.1/x", paperKey(scholar.Paper{DOI: "10.1/x", ID: "abc"}))
	assert.Equal(t, "s2:abc", paperKey(scholar.Paper{ID: "abc"}))
	assert.NotEmpty(t, paperKey(scholar.Paper{}))
}
