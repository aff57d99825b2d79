package models

import (
	"context"
	"fmt"
	"time"

	"github.com/nrednav/cuid2"

	"go.hackfix.me/bulletin/db/types"
)

// Post is a message published on the bulletin board.
type Post struct {
	ID        uint64
	UID       string
	CreatedAt time.Time
	Author    string
	Title     string
	Body      string
}

// Save stores a new post in the database. A unique post UID is generated if
// one isn't set.
func (p *Post) Save(ctx context.Context, d types.Querier) error {
	if p.Author == "" || p.Title == "" {
		return types.InvalidInputError{Msg: "post author and title must be set"}
	}
	if p.UID == "" {
		p.UID = cuid2.Generate()
	}

	timeNow := d.TimeNow().UTC()
	res, err := d.ExecContext(ctx, `INSERT INTO posts
		(id, uid, created_at, author, title, body)
		VALUES (NULL, ?, ?, ?, ?, ?)`,
		p.UID, timeNow, p.Author, p.Title, p.Body)
	if err != nil {
		return types.Err("post", fmt.Sprintf("ID '%s'", p.UID), err)
	}

	p.ID, err = insertID(res)
	if err != nil {
		return err
	}
	p.CreatedAt = timeNow

	return nil
}

// Load the post data from the database using its UID.
func (p *Post) Load(ctx context.Context, d types.Querier) error {
	if !cuid2.IsCuid(p.UID) {
		return types.InvalidInputError{Msg: fmt.Sprintf("invalid post ID '%s'", p.UID)}
	}

	posts, err := Posts(ctx, d, types.NewFilter("p.uid = ?", []any{p.UID}))
	if err != nil {
		return err
	}

	if len(posts) == 0 {
		return types.NoResultError{ModelName: "post", ID: fmt.Sprintf("ID '%s'", p.UID)}
	}
	*p = *posts[0]

	return nil
}

// Posts returns posts from the database, newest first. An optional filter can
// be passed to limit the results.
func Posts(ctx context.Context, d types.Querier, filter *types.Filter) (posts []*Post, rerr error) {
	where, args, limit, limitArgs := filter.Clauses()
	query := fmt.Sprintf(`SELECT p.id, p.uid, p.created_at, p.author, p.title, p.body
		FROM posts p
		%s
		ORDER BY p.created_at DESC, p.id DESC
		%s`, where, limit)

	rows, err := d.QueryContext(ctx, query, append(args, limitArgs...)...)
	if err != nil {
		return nil, types.LoadError{ModelName: "posts", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing posts rows: %w", err)
		}
	}()

	posts = make([]*Post, 0)
	for rows.Next() {
		var p Post
		err = rows.Scan(&p.ID, &p.UID, &p.CreatedAt, &p.Author, &p.Title, &p.Body)
		if err != nil {
			return nil, types.ScanError{ModelName: "post", Err: err}
		}
		posts = append(posts, &p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over posts rows: %w", err)
	}

	return posts, nil
}

// PostsCount returns the amount of posts matching filter, ignoring its limit
// and offset.
func PostsCount(ctx context.Context, d types.Querier, filter *types.Filter) (int, error) {
	return filterCount(ctx, d, "posts", "p", filter)
}
