package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kong"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	actx "go.hackfix.me/bulletin/app/context"
	aerrors "go.hackfix.me/bulletin/app/errors"
	"go.hackfix.me/bulletin/web/client"
	stypes "go.hackfix.me/bulletin/web/server/types"
)

// The Post command publishes and lists posts on a Bulletin server.
type Post struct {
	Server string `help:"[host]:port or URL of the Bulletin server. Default: the server address from the configuration."`

	Add struct {
		Title string `arg:"" help:"The title of the post."`
		Body  string `help:"The body of the post."`
		User  string `required:"" help:"The name of the user publishing the post."`
	} `kong:"cmd,help='Publish a new post.'"`
	Ls struct {
		Page     int `default:"0" help:"The page of posts to list, starting at 0."`
		PageSize int `default:"25" help:"The amount of posts per page."`
	} `kong:"cmd,help='List posts, newest first.'"`
}

// Run the post command.
func (c *Post) Run(kctx *kong.Context, appCtx *actx.Context) error {
	cl, err := client.New(c.Server, appCtx.Logger)
	if err != nil {
		return aerrors.NewRuntimeError("failed creating web client", err,
			"Set the server address with --server, or in the configuration file.")
	}

	switch kctx.Command() {
	case "post add <title>":
		token, err := newSessionToken(appCtx, c.Add.User, time.Time{})
		if err != nil {
			return err
		}

		post, err := cl.CreatePost(appCtx.Ctx, token, stypes.NewPost{Title: c.Add.Title, Body: c.Add.Body})
		if err != nil {
			return aerrors.NewRuntimeError("failed publishing post", err, "")
		}
		fmt.Fprintln(appCtx.Stdout, post.ID)

	case "post ls":
		resp, err := cl.ListPosts(appCtx.Ctx, c.Ls.Page, c.Ls.PageSize)
		if err != nil {
			return aerrors.NewRuntimeError("failed listing posts", err, "")
		}

		if err = renderPosts(appCtx.Stdout, resp); err != nil {
			return fmt.Errorf("failed rendering posts: %w", err)
		}

	default:
		return errors.New("unknown post command")
	}

	return nil
}

// renderPosts writes a page of posts as a borderless table, followed by a hint
// if more pages are available. Nothing is written for an empty page.
func renderPosts(w io.Writer, resp *stypes.PostsResponse) error {
	if len(resp.Data) == 0 {
		return nil
	}

	noLines := tw.Lines{
		ShowHeaderLine: tw.Off, ShowFooterLine: tw.Off,
		ShowTop: tw.Off, ShowBottom: tw.Off,
	}
	noSeparators := tw.Separators{
		ShowHeader: tw.Off, ShowFooter: tw.Off,
		BetweenRows: tw.Off, BetweenColumns: tw.Off,
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders:  tw.BorderNone,
			Symbols:  tw.NewSymbols(tw.StyleASCII),
			Settings: tw.Settings{Lines: noLines, Separators: noSeparators},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
			Row: tw.CellConfig{
				// Long titles are truncated rather than wrapped, to keep one
				// post per line.
				Formatting:   tw.CellFormatting{AutoWrap: tw.WrapTruncate},
				Alignment:    tw.CellAlignment{Global: tw.AlignLeft},
				ColMaxWidths: tw.CellWidth{Global: 60},
			},
		}),
	)

	table.Header([]string{"ID", "Author", "Title", "Created"})
	for _, post := range resp.Data {
		err := table.Append([]string{
			post.ID, post.Author, post.Title,
			post.CreatedAt.Local().Format(time.DateTime),
		})
		if err != nil {
			return err //nolint:wrapcheck // This is wrapped by the caller.
		}
	}
	if err := table.Render(); err != nil {
		return err //nolint:wrapcheck // This is wrapped by the caller.
	}

	shown := resp.Page*resp.PageSize + len(resp.Data)
	if shown < resp.Total {
		fmt.Fprintf(w, "\n%d more posts, use --page=%d to see the next page\n",
			resp.Total-shown, resp.Page+1)
	}

	return nil
}
