package api

import "context"

// CreateMaterial adds a material to a project's inventory. The
// backend expects the initial quantity under TotalQuantity.
func (c *Client) CreateMaterial(ctx context.Context, projectID, name string, quantity int, unit string) error {
	body := map[string]any{
		"projectId":     projectID,
		"name":          name,
		"TotalQuantity": quantity,
		"unit":          unit,
	}
	return c.post(ctx, "api/v1/material/create", body, nil)
}

// IncreaseMaterial tops up an existing material's quantity.
func (c *Client) IncreaseMaterial(ctx context.Context, materialID string, amount int) error {
	body := map[string]any{"id": materialID, "increaseBy": amount}
	return c.put(ctx, "api/v1/material/increase", body, nil)
}

// UpdateMaterial sets a material's total quantity outright.
func (c *Client) UpdateMaterial(ctx context.Context, materialID string, quantity int) error {
	body := map[string]any{"id": materialID, "quantity": quantity}
	return c.put(ctx, "api/v1/material/update", body, nil)
}
