package store

import "strconv"

// schemaSQL is the DDL applied by Open at every startup. Every statement is
// IF NOT EXISTS; there is no migration or version-gating step.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS slack_messages (
	id TEXT NOT NULL,
	workspace TEXT NOT NULL,
	channel TEXT NOT NULL,
	sender TEXT NOT NULL,
	content TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	thread_ts TEXT,
	mentions TEXT NOT NULL DEFAULT '[]',
	attachment_names TEXT NOT NULL DEFAULT '[]',
	content_hash TEXT NOT NULL,
	version INTEGER NOT NULL DEFAULT 1,
	edited_at DATETIME,
	ingested_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	date_only DATE GENERATED ALWAYS AS (DATE(timestamp)) STORED,
	month_year TEXT GENERATED ALWAYS AS (strftime('%Y-%m', timestamp)) STORED,
	day_of_week TEXT GENERATED ALWAYS AS (strftime('%w', timestamp)) STORED,
	PRIMARY KEY (id),
	UNIQUE (workspace, channel, id)
);

CREATE INDEX IF NOT EXISTS idx_slack_messages_timestamp ON slack_messages(timestamp);
CREATE INDEX IF NOT EXISTS idx_slack_messages_workspace_channel ON slack_messages(workspace, channel);
CREATE INDEX IF NOT EXISTS idx_slack_messages_sender ON slack_messages(sender);
CREATE INDEX IF NOT EXISTS idx_slack_messages_date_only ON slack_messages(date_only);
CREATE INDEX IF NOT EXISTS idx_slack_messages_content_hash ON slack_messages(content_hash);
CREATE INDEX IF NOT EXISTS idx_slack_messages_thread_ts ON slack_messages(thread_ts);

CREATE TABLE IF NOT EXISTS slack_reactions (
	message_id TEXT NOT NULL,
	emoji TEXT NOT NULL,
	count INTEGER NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (message_id, emoji),
	FOREIGN KEY (message_id) REFERENCES slack_messages(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_slack_reactions_message_id ON slack_reactions(message_id);
CREATE INDEX IF NOT EXISTS idx_slack_reactions_emoji ON slack_reactions(emoji);

CREATE VIRTUAL TABLE IF NOT EXISTS slack_messages_fts USING fts5(
	id UNINDEXED,
	content
);

CREATE TRIGGER IF NOT EXISTS slack_messages_fts_ai AFTER INSERT ON slack_messages BEGIN
	INSERT INTO slack_messages_fts(id, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS slack_messages_fts_ad AFTER DELETE ON slack_messages BEGIN
	DELETE FROM slack_messages_fts WHERE id = old.id;
END;

CREATE TRIGGER IF NOT EXISTS slack_messages_fts_au AFTER UPDATE OF content ON slack_messages BEGIN
	DELETE FROM slack_messages_fts WHERE id = old.id;
	INSERT INTO slack_messages_fts(id, content) VALUES (new.id, new.content);
END;

CREATE TABLE IF NOT EXISTS slack_message_embeddings_raw (
	id TEXT PRIMARY KEY,
	embedding BLOB NOT NULL,
	FOREIGN KEY (id) REFERENCES slack_messages(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS ingestion_log (
	session_id TEXT NOT NULL,
	workspace TEXT NOT NULL,
	channel TEXT NOT NULL,
	last_message_timestamp TEXT,
	ingested_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	message_count INTEGER NOT NULL DEFAULT 0,
	new_messages INTEGER NOT NULL DEFAULT 0,
	updated_messages INTEGER NOT NULL DEFAULT 0,
	duplicate_messages INTEGER NOT NULL DEFAULT 0,
	reaction_updated_messages INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (session_id, workspace, channel)
);
`

// EmbeddingDimensions is the fixed embedding vector width for the whole store.
const EmbeddingDimensions = 512

// vectorTableDDL builds the sqlite-vec virtual table statement for the
// configured dimension, mirroring memory_vector.go's ensureVectorTable.
func vectorTableDDL(dims int) string {
	return "CREATE VIRTUAL TABLE IF NOT EXISTS slack_message_embeddings USING vec0(id TEXT PRIMARY KEY, embedding FLOAT[" +
		strconv.Itoa(dims) + "]);"
}
