package domain

import "time"

// Issue is an open issue. Pull requests share the issues endpoint on GitHub;
// PullRequest marks those records so they can be excluded.
type Issue struct {
	Org         string    `json:"org"`
	Repo        string    `json:"repo"`
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Labels      []string  `json:"labels"`
	Comments    int       `json:"comments"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	URL         string    `json:"url"`
	PullRequest bool      `json:"-"`
}
