package http

import "context"

// FirstPage is the page number APIs with 1-based paging start from.
const FirstPage = 1

// PageFetcher fetches one page of items. next is the page to request
// afterwards, or zero when this was the last page.
type PageFetcher[T any] func(ctx context.Context, page int) (items []T, next int, err error)

// PageIterator walks a paginated listing, fetching pages lazily.
type PageIterator[T any] struct {
	fetch  PageFetcher[T]
	page   int
	buffer []T
	done   bool
	err    error
	pages  int
}

// NewPageIterator creates an iterator starting at FirstPage.
func NewPageIterator[T any](fetch PageFetcher[T]) *PageIterator[T] {
	return &PageIterator[T]{
		fetch: fetch,
		page:  FirstPage,
	}
}

// Next returns the next item. When iteration is complete it returns
// (zero, false, nil). Empty pages that still point at a next page are
// skipped.
func (p *PageIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if p.err != nil {
		return zero, false, p.err
	}

	for len(p.buffer) == 0 && !p.done {
		items, next, err := p.fetch(ctx, p.page)
		if err != nil {
			p.err = err
			return zero, false, err
		}
		p.pages++
		p.buffer = items
		if next == 0 {
			p.done = true
		}
		p.page = next
	}

	if len(p.buffer) == 0 {
		return zero, false, nil
	}

	item := p.buffer[0]
	p.buffer = p.buffer[1:]

	return item, true, nil
}

// All collects the remaining items into a slice.
func (p *PageIterator[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	err := p.ForEach(ctx, func(item T) error {
		all = append(all, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// ForEach calls fn for each remaining item.
// If fn returns an error, iteration stops and that error is returned.
func (p *PageIterator[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// Pages returns the number of pages requested so far.
func (p *PageIterator[T]) Pages() int {
	return p.pages
}
