// Package action validates and handles server-side route actions with a
// fluent, immutable builder.
//
// A Builder is created for each request, and configured by chaining calls that
// declare the HTTP method, the query and body schemas, and middleware that
// transform a typed action context value. The final Action call runs the
// pipeline, and always returns a response: validation and configuration
// failures are returned to the client as {"message": ...} with their status
// code, while unexpected failures are logged and hidden behind a generic 500
// response.
//
//	resp := action.New(req, action.WithContext(AppContext{})).
//		Method(http.MethodGet).
//		Query(schema.Query[PageQuery]()).
//		Action(func(ctx context.Context, in action.Input[AppContext]) (*action.Response, error) {
//			q, _ := action.QueryAs[PageQuery](in)
//			return action.JSON(http.StatusOK, list(q.Page, q.PageSize)), nil
//		})
//
// Every builder lineage carries a Trace of the calls made on it, which is
// included in the structured log record of a failed action.
package action
