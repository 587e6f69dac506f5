package supabase

import (
	"github.com/supabase-community/supabase-go"

	"bouquet-studio-backend/internal/config"
)

// Client is the process-wide Supabase project handle.
type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// Auth returns the auth client bound to this project.
func (c *Client) Auth() *AuthClient {
	return NewAuthClient(c.Supabase.Auth)
}
