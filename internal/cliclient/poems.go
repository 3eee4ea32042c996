package cliclient

import "context"

// Generate asks the server for a poem fitting the given names.
func (c *Client) Generate(ctx context.Context, userName string, friendNames []string) (*Poem, error) {
	var poem Poem
	_, err := c.Post(ctx, "/poems/generate", GenerateRequest{UserName: userName, FriendNames: friendNames}, &poem)
	if err != nil {
		return nil, err
	}
	return &poem, nil
}

// Validate checks template text on the server.
func (c *Client) Validate(ctx context.Context, text string) (*Analysis, error) {
	var analysis Analysis
	_, err := c.Post(ctx, "/poems/validate", map[string]string{"text": text}, &analysis)
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}
