// Package domain contains the core data structures and domain logic for the application.
package domain

// Organization is a GitHub organization visible to the authenticated user.
type Organization struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PublicRepos int    `json:"public_repos"`
	URL         string `json:"url"`
}

// Viewer is the user that owns the configured token.
type Viewer struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}
