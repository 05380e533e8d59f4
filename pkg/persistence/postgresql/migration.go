package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create leads table
			CREATE TABLE leads (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				phone VARCHAR(50),
				status VARCHAR(50) NOT NULL CHECK (status IN ('new', 'contacted')),
				source VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_leads_status ON leads(status);
			CREATE INDEX idx_leads_created_at ON leads(created_at);
		`,
		2: `
			-- Single-row table holding the current workflow definition as a
			-- JSON document. The fixed id enforces the single-definition
			-- model.
			CREATE TABLE workflow_definition (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				document JSONB NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);
		`,
	}
}
