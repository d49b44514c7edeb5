package postgres

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	version    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	version    TEXT NOT NULL,
	id         TEXT NOT NULL,
	content    TEXT NOT NULL,
	metadata   JSONB NOT NULL,
	embedding  vector NOT NULL,
	PRIMARY KEY (collection, version, id)
);
`
