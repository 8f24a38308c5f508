// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for cursor-paginated reads.
//
// # Overview
//
// Stores return one [Page] at a time together with an opaque cursor pointing past
// the last row. An [Iterator] walks those pages lazily, and can be resumed from
// any cursor it has handed out. The same types drive the API list endpoints,
// where the cursor travels in the query string and the response metadata.
package pagination

import (
	"context"
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 100
)

// # Pages & Cursors

// Page is a single slice of results plus the cursor of the following page.
//
// An empty NextCursor marks the last page.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// Last reports whether no further page follows this one.
func (p Page[T]) Last() bool {
	return p.NextCursor == ""
}

// Fetch loads the page that starts after cursor. An empty cursor means the first page.
type Fetch[T any] func(context context.Context, cursor string, limit int) (Page[T], error)

// Iterator lazily walks a paginated result set.
//
// # Concurrency
//
// Iterator is not safe for concurrent use. Create one per operation.
type Iterator[T any] struct {
	fetch  Fetch[T]
	limit  int
	cursor string
	done   bool
}

// NewIterator starts an iterator at the first page.
//
// A non-positive limit falls back to [DefaultLimit].
func NewIterator[T any](fetch Fetch[T], limit int) *Iterator[T] {
	return Resume(fetch, limit, "")
}

// Resume starts an iterator at a cursor previously returned by [Iterator.Cursor].
func Resume[T any](fetch Fetch[T], limit int, cursor string) *Iterator[T] {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Iterator[T]{fetch: fetch, limit: limit, cursor: cursor}
}

// Next returns the next page of items.
//
// ok is false once the result set is exhausted. A page may be empty only when
// the whole result set is empty.
func (it *Iterator[T]) Next(context context.Context) (items []T, ok bool, err error) {
	if it.done {
		return nil, false, nil
	}

	page, err := it.fetch(context, it.cursor, it.limit)
	if err != nil {
		return nil, false, err
	}

	it.cursor = page.NextCursor
	if page.Last() {
		it.done = true
	}

	if len(page.Items) == 0 && it.done {
		return nil, false, nil
	}

	return page.Items, true, nil
}

// Cursor returns the position after the last page handed out by [Iterator.Next].
// It is empty before the first call and after the last page.
func (it *Iterator[T]) Cursor() string {
	return it.cursor
}

// Collect drains an iterator into a single slice, preserving page order.
func Collect[T any](context context.Context, it *Iterator[T]) ([]T, error) {
	var all []T
	for {
		items, ok, err := it.Next(context)
		if err != nil {
			return nil, err
		}
		if !ok {
			return all, nil
		}
		all = append(all, items...)
	}
}

// # HTTP Parameters

// Params holds the parsed cursor and limit from a request's query string.
type Params struct {
	Cursor string
	Limit  int
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Limit      int    `json:"limit"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// NewMeta constructs pagination metadata for a response.
func NewMeta(limit int, nextCursor string) Meta {
	return Meta{
		Limit:      limit,
		NextCursor: nextCursor,
		HasMore:    nextCursor != "",
	}
}

// FromRequest parses "cursor" and "limit" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid, negative, or excessive limits are replaced by [DefaultLimit].
func FromRequest(r *http.Request) Params {
	limit := parseIntParam(r, "limit", DefaultLimit)

	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Cursor: r.URL.Query().Get("cursor"), Limit: limit}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
