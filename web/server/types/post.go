package types

import "time"

// User is the authenticated author of a request.
type User struct {
	Name string
}

// ActionContext is the context value threaded through the middleware of API
// actions.
type ActionContext struct {
	User *User
}

// PostsQuery are the query string parameters of the post listing endpoint.
type PostsQuery struct {
	Page     int `json:"page" default:"0" validate:"gte=0,lte=1000000"`
	PageSize int `json:"pageSize" default:"25" validate:"gte=1,lte=100"`
}

// NewPost is the request body of the post creation endpoint.
type NewPost struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body,omitempty" validate:"max=10000"`
}

// Post is the API representation of a stored post.
type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostsResponse is the response body of the post listing endpoint.
type PostsResponse struct {
	Data     []Post `json:"data"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Total    int    `json:"total"`
}
