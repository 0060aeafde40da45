package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create tickets table
			CREATE TABLE tickets (
				id VARCHAR(255) PRIMARY KEY,
				title VARCHAR(500) NOT NULL,
				description TEXT NOT NULL,
				category VARCHAR(255),
				priority VARCHAR(50) NOT NULL CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
				status VARCHAR(50) NOT NULL CHECK (status IN ('new', 'processing', 'resolved', 'escalated', 'closed')),
				resolution TEXT,
				resolved_by VARCHAR(255),
				confidence DOUBLE PRECISION,
				escalation JSONB,
				requester VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_tickets_status ON tickets(status);
			CREATE INDEX idx_tickets_category ON tickets(category);
			CREATE INDEX idx_tickets_created_at ON tickets(created_at);
			CREATE INDEX idx_tickets_search ON tickets
				USING GIN (to_tsvector('english', title || ' ' || description));
		`,
		2: `
			-- Create workflows table with an append-only step log
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				ticket_id VARCHAR(255) NOT NULL,
				steps JSONB NOT NULL DEFAULT '[]',
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'completed', 'failed')),
				final_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
				total_duration_ms BIGINT NOT NULL DEFAULT 0,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_ticket_id ON workflows(ticket_id);
			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_started_at ON workflows(started_at);
		`,
		3: `
			-- Create knowledge base articles table
			CREATE TABLE kb_articles (
				id VARCHAR(255) PRIMARY KEY,
				title VARCHAR(500) NOT NULL,
				content TEXT NOT NULL,
				summary TEXT,
				category VARCHAR(255),
				usage_count INTEGER NOT NULL DEFAULT 0,
				helpful_count INTEGER NOT NULL DEFAULT 0,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_kb_articles_category ON kb_articles(category);
			CREATE INDEX idx_kb_articles_search ON kb_articles
				USING GIN (to_tsvector('english', title || ' ' || content));

			-- Single-row learning metrics aggregate
			CREATE TABLE learning_metrics (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				data JSONB NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);
		`,
	}
}
