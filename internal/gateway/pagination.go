package gateway

import (
	"context"
	"iter"

	"github.com/google/go-github/v84/github"
)

// pageFunc fetches one page of a REST listing. Pages are numbered from 1.
type pageFunc[T any] func(ctx context.Context, page int) ([]T, *github.Response, error)

// pages yields successive pages of a listing. It stops after a page shorter
// than perPage, after the last page reported by the Link header, or after the
// first error. The next page is only requested once the consumer has taken the
// current one.
func pages[T any](ctx context.Context, perPage int, fetch pageFunc[T]) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		page := 1
		for {
			items, resp, err := fetch(ctx, page)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(items, nil) {
				return
			}
			if len(items) < perPage || resp == nil || resp.NextPage == 0 {
				return
			}
			page = resp.NextPage
		}
	}
}
