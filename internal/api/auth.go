package api

import "context"

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.post(ctx, "api/Auth/Login", body, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &APIError{Message: "login succeeded but no token was returned"}
	}
	return resp.AccessToken, nil
}

// RegisterRequest creates a new worker or supervisor account.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// CreateWorker registers a worker account.
func (c *Client) CreateWorker(ctx context.Context, req RegisterRequest) error {
	return c.post(ctx, "api/v1/Worker/CreateWorker", req, nil)
}

// CreateSupervisor registers a supervisor account.
func (c *Client) CreateSupervisor(ctx context.Context, req RegisterRequest) error {
	return c.post(ctx, "api/v1/Supervisors/CreateSupervisor", req, nil)
}
