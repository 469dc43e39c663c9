package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create workflow_nodes table (administrator-authored graph steps)
			CREATE TABLE workflow_nodes (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				position INT NOT NULL DEFAULT 0,
				node_type VARCHAR(50) NOT NULL CHECK (node_type IN ('action', 'decision', 'end')),
				icon VARCHAR(100) NOT NULL DEFAULT '',
				color VARCHAR(50) NOT NULL DEFAULT '',
				input_fields JSONB NOT NULL DEFAULT '[]',
				template_ids JSONB NOT NULL DEFAULT '[]',
				is_start_node BOOLEAN NOT NULL DEFAULT false,
				is_end_node BOOLEAN NOT NULL DEFAULT false,
				edit_freeze_hours INT,
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'inactive')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_nodes_status ON workflow_nodes(status);
			CREATE INDEX idx_workflow_nodes_position ON workflow_nodes(position);

			-- Create workflow_transitions table (directed, optionally-guarded edges)
			-- No foreign keys: graph imports may arrive in any order and node
			-- deletion cascades through the repository in one transaction.
			CREATE TABLE workflow_transitions (
				id UUID PRIMARY KEY,
				from_node_id UUID NOT NULL,
				to_node_id UUID NOT NULL,
				condition_type VARCHAR(50) NOT NULL CHECK (condition_type IN ('always', 'lab_result', 'field_value')),
				condition_field VARCHAR(255) NOT NULL DEFAULT '',
				condition_operator VARCHAR(50) NOT NULL DEFAULT '',
				condition_value VARCHAR(255) NOT NULL DEFAULT '',
				label VARCHAR(255) NOT NULL DEFAULT '',
				display_order INT NOT NULL DEFAULT 0,
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'inactive')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_transitions_from_node_id ON workflow_transitions(from_node_id);
			CREATE INDEX idx_workflow_transitions_to_node_id ON workflow_transitions(to_node_id);
			CREATE INDEX idx_workflow_transitions_status ON workflow_transitions(status);

			-- Create sample_workflow_states table (regulatory history, never deleted).
			-- (sample_id, node_id) carries no unique constraint; the repository
			-- upserts through a lookup instead.
			CREATE TABLE sample_workflow_states (
				id UUID PRIMARY KEY,
				sample_id VARCHAR(255) NOT NULL,
				node_id UUID NOT NULL,
				node_data JSONB NOT NULL DEFAULT '{}',
				entered_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'completed', 'skipped'))
			);

			CREATE INDEX idx_sample_workflow_states_sample_id ON sample_workflow_states(sample_id);
			CREATE INDEX idx_sample_workflow_states_node_id ON sample_workflow_states(node_id);
			CREATE INDEX idx_sample_workflow_states_sample_node ON sample_workflow_states(sample_id, node_id);

			-- Create samples table (legacy lab fields read for inference and
			-- mirrored on decision submissions)
			CREATE TABLE samples (
				id VARCHAR(255) PRIMARY KEY,
				lifted_date TIMESTAMP WITH TIME ZONE,
				dispatch_date TIMESTAMP WITH TIME ZONE,
				lab_report_date TIMESTAMP WITH TIME ZONE,
				lab_result VARCHAR(100) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			-- Create workflow_settings table (singleton row)
			CREATE TABLE workflow_settings (
				id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
				node_edit_hours INT NOT NULL DEFAULT 48,
				allow_node_edit BOOLEAN NOT NULL DEFAULT true,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
		`,
	}
}
