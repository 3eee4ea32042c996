package cliclient

import (
	"context"
	"net/url"
)

// ListUsers returns all users (admin only).
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	_, err := c.Get(ctx, "/admin/users", &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// StartBackfill queues a fit backfill job (admin only).
func (c *Client) StartBackfill(ctx context.Context, req BackfillRequest) (*Job, error) {
	var job Job
	_, err := c.Post(ctx, "/admin/backfill", req, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob returns a job by ID (admin only).
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	var job Job
	_, err := c.Get(ctx, "/admin/jobs/"+url.PathEscape(id), &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
