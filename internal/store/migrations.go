package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create sessions and turns",
		SQL: `
			CREATE TABLE sessions (
				id          TEXT PRIMARY KEY,
				key_str     TEXT NOT NULL,
				surface     TEXT NOT NULL,
				client_id   TEXT NOT NULL DEFAULT '',
				chat_id     TEXT NOT NULL,
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE UNIQUE INDEX idx_sessions_key ON sessions (key_str);
			CREATE INDEX idx_sessions_surface ON sessions (surface);

			CREATE TABLE turns (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				role        TEXT NOT NULL,
				content     TEXT NOT NULL,
				timestamp   TEXT NOT NULL DEFAULT (datetime('now')),
				tool_name   TEXT NOT NULL DEFAULT '',
				tool_args   TEXT NOT NULL DEFAULT '',
				is_error    INTEGER NOT NULL DEFAULT 0,
				files       TEXT
			);

			CREATE INDEX idx_turns_session ON turns (session_id, id);
		`,
	},
	{
		Version: 2,
		Name:    "create paper library with FTS5",
		SQL: `
			CREATE TABLE papers (
				id          TEXT PRIMARY KEY,
				title       TEXT NOT NULL,
				authors     TEXT NOT NULL DEFAULT '[]',
				abstract    TEXT NOT NULL DEFAULT '',
				year        INTEGER NOT NULL DEFAULT 0,
				venue       TEXT NOT NULL DEFAULT '',
				doi         TEXT NOT NULL DEFAULT '',
				arxiv_id    TEXT NOT NULL DEFAULT '',
				url         TEXT NOT NULL DEFAULT '',
				saved_at    TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE VIRTUAL TABLE papers_fts USING fts5(
				title,
				abstract,
				content='papers',
				content_rowid='rowid'
			);

			CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract)
				VALUES (new.rowid, new.title, new.abstract);
			END;

			CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract)
				VALUES ('delete', old.rowid, old.title, old.abstract);
			END;

			CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract)
				VALUES ('delete', old.rowid, old.title, old.abstract);
				INSERT INTO papers_fts(rowid, title, abstract)
				VALUES (new.rowid, new.title, new.abstract);
			END;
		`,
	},
}
