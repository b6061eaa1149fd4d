package recplatform

import "context"

// Older callers grew up on the platform's v1 vocabulary (datasets and
// models). These wrappers keep them compiling; new code uses the table and
// engine names directly.

// Deprecated: use CreateTable.
func (c *Client) CreateDataset(ctx context.Context, name, schemaType string) (CreateResult, error) {
	return c.CreateTable(ctx, name, schemaType)
}

// Deprecated: use InsertRows.
func (c *Client) InsertEvents(ctx context.Context, dataset string, data any) (int, error) {
	return c.InsertRows(ctx, dataset, data)
}

// Deprecated: use CreateEngine.
func (c *Client) CreateModel(ctx context.Context, spec EngineSpec) (CreateResult, error) {
	return c.CreateEngine(ctx, spec)
}

// Deprecated: use GetEngine.
func (c *Client) GetModel(ctx context.Context, name string) (EngineStatus, error) {
	return c.GetEngine(ctx, name)
}
