package supabase

import (
	"fmt"

	supa "github.com/supabase-community/supabase-go"
)

// New creates a Supabase client for the hosted project. The anon/service
// key doubles as the PostgREST credential and the GoTrue admin credential.
func New(url, key string) (*supa.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if key == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}

	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client failed: %w", err)
	}
	return client, nil
}
