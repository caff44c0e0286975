// Package http implements the HTTP handlers of the dashboard API.
// Handlers are a thin layer between the chi router and the services
// package: they parse and validate requests, look up the caller's session
// and turn service results into JSON, Markdown, CSV, XLSX or PNG responses.
//
// # Handler Structure
//
// Each handler group is a struct holding its service, a component logger
// and the shared RFC 7807 error handler, and exposes a Routes method that
// returns a chi.Router to mount:
//
//	func (h *DatasetHandler) Preview(w http.ResponseWriter, r *http.Request) {
//	    sess := MustSession(r)
//	    rows, ok := h.query.ValidateInt(w, r, "rows", 1, 1000, h.previewRows)
//	    if !ok {
//	        return
//	    }
//	    preview, err := h.service.Preview(r.Context(), sess, rows)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, ToAPIError(err))
//	        return
//	    }
//	    render.JSON(w, r, preview)
//	}
//
// # Sessions
//
// SessionMiddleware resolves the session cookie before any /api handler
// runs, creating a session on first contact. Handlers read it with
// SessionFromRequest or MustSession.
//
// # Error Mapping
//
// Services return wrapped sentinel errors from the domain packages.
// ToAPIError maps them onto status codes:
//
//	400  invalid method, parameter, chart, format, encoding or input
//	404  unknown column
//	409  no dataset loaded, analysis not run yet
//	413  upload too large
//	422  non-numeric column, empty dataset, insufficient data
//
// Anything else falls through to the error handler as a 500.
package http
