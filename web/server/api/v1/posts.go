package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go.hackfix.me/bulletin/db/models"
	dbtypes "go.hackfix.me/bulletin/db/types"
	"go.hackfix.me/bulletin/web/server/action"
	"go.hackfix.me/bulletin/web/server/action/schema"
	"go.hackfix.me/bulletin/web/server/types"
)

// ListPosts returns a page of posts, newest first.
func (h *Handler) ListPosts(r *http.Request) *action.Response {
	return h.newAction(r).
		Method(http.MethodGet).
		Query(schema.Query[types.PostsQuery]()).
		Action(func(ctx context.Context, in action.Input[types.ActionContext]) (*action.Response, error) {
			q, _ := action.QueryAs[types.PostsQuery](in)

			filter := (*dbtypes.Filter)(nil).Page(q.Page, q.PageSize)
			posts, err := models.Posts(ctx, h.appCtx.DB, filter)
			if err != nil {
				return nil, err
			}
			total, err := models.PostsCount(ctx, h.appCtx.DB, filter)
			if err != nil {
				return nil, err
			}

			resp := types.PostsResponse{
				Data:     make([]types.Post, len(posts)),
				Page:     q.Page,
				PageSize: q.PageSize,
				Total:    total,
			}
			for i, p := range posts {
				resp.Data[i] = toPost(p)
			}

			return action.JSON(http.StatusOK, resp), nil
		})
}

// CreatePost publishes a new post by the authenticated user.
func (h *Handler) CreatePost(r *http.Request) *action.Response {
	return h.newAction(r, action.WithContext(types.ActionContext{})).
		Use(h.Authenticate).
		Method(http.MethodPost).
		JSON(schema.Of[types.NewPost](schema.Strict())).
		Action(func(ctx context.Context, in action.Input[types.ActionContext]) (*action.Response, error) {
			if in.Ctx.User == nil {
				return nil, types.NewError(http.StatusUnauthorized, "Failed to parse")
			}
			body, _ := action.BodyAs[types.NewPost](in)

			post := &models.Post{Author: in.Ctx.User.Name, Title: body.Title, Body: body.Body}
			if err := post.Save(ctx, h.appCtx.DB); err != nil {
				return nil, err
			}

			resp := action.JSON(http.StatusCreated, toPost(post))
			resp.Header.Set("Location", "/api/v1/posts/"+post.UID)

			return resp, nil
		})
}

// GetPost returns a single post.
func (h *Handler) GetPost(r *http.Request) *action.Response {
	id := chi.URLParam(r, "id")

	return h.newAction(r).
		Method(http.MethodGet).
		Action(func(ctx context.Context, _ action.Input[types.ActionContext]) (*action.Response, error) {
			post := &models.Post{UID: id}
			err := post.Load(ctx, h.appCtx.DB)
			if errors.As(err, &dbtypes.NoResultError{}) || errors.As(err, &dbtypes.InvalidInputError{}) {
				return nil, types.NewError(http.StatusNotFound, "Post not found")
			}
			if err != nil {
				return nil, err
			}

			return action.JSON(http.StatusOK, toPost(post)), nil
		})
}

func toPost(p *models.Post) types.Post {
	return types.Post{
		ID:        p.UID,
		Author:    p.Author,
		Title:     p.Title,
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
	}
}
