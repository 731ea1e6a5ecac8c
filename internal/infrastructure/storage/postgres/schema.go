package postgres

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_fetched_at TIMESTAMPTZ,
		last_fetch_status TEXT,
		last_fetch_message TEXT,
		last_fetch_error TEXT,
		last_fetch_saved_articles INTEGER,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		link TEXT NOT NULL UNIQUE,
		guid TEXT UNIQUE,
		source_name TEXT NOT NULL,
		published_date TIMESTAMPTZ,
		meta_description TEXT,
		fetched_at TIMESTAMPTZ NOT NULL,
		categorization_status TEXT NOT NULL DEFAULT 'pending',
		news_category TEXT,
		tech_category TEXT,
		rationale TEXT,
		categorized_at TIMESTAMPTZ,
		is_training_data BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS articles_status_idx ON articles (categorization_status)`,
	`CREATE INDEX IF NOT EXISTS articles_published_idx ON articles (published_date DESC)`,
	`CREATE TABLE IF NOT EXISTS fetch_logs (
		id TEXT PRIMARY KEY,
		job_id TEXT NOT NULL UNIQUE,
		job_type TEXT NOT NULL,
		status TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		doc JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS fetch_logs_status_idx ON fetch_logs (status, start_time DESC)`,
	`CREATE INDEX IF NOT EXISTS fetch_logs_type_idx ON fetch_logs (job_type, start_time DESC)`,
	`CREATE TABLE IF NOT EXISTS categorization_logs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		triggered_by TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		doc JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS categorization_logs_start_idx ON categorization_logs (start_time DESC)`,
	`CREATE TABLE IF NOT EXISTS category_corrections (
		id TEXT PRIMARY KEY,
		corrected_at TIMESTAMPTZ NOT NULL,
		doc JSONB NOT NULL
	)`,
}
