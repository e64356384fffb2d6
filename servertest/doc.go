// Package servertest hosts an application in memory for tests.
//
// A Fixture loads configuration (appsettings.json, appsettings.<env>.json,
// appsettings.test.json, then environment variables), builds a service
// container and a Gin host from a Startup, and exposes an *http.Client whose
// requests are served by the host directly, without a listener.
//
//	func TestItems(t *testing.T) {
//	    f := servertest.NewT(t, &app.Startup{})
//
//	    item, err := servertest.Get[app.Item](context.Background(), f, "/items/1")
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//
//	    repo := servertest.MustService[*app.ItemRepo](f)
//	    ...
//	}
//
// Typed helpers decode the JSON response body whatever the status code.
// Raw helpers (f.Get, f.Post, ...) return the *http.Response untouched.
package servertest
