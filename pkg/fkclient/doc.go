// Package fkclient provides the primary entry point for constructing an
// engine client on top of the fetchkit package.
//
// It layers configuration, HTTP transport, retries, credential refresh
// coordination and response caching under the endpoint/binding primitives
// defined in fetchkit. Most applications should import fkclient to build a
// client, then create bindings for their resources with Bind and BindList.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fetchkit-io/fetchkit/pkg/fetchkit"
//	  "github.com/fetchkit-io/fetchkit/pkg/fkclient"
//	)
//
//	type App struct {
//	  GUID string `json:"guid"`
//	  Name string `json:"name"`
//	}
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Minimal: just a base URL (no auth).
//	  cli, err := fkclient.New(&fetchkit.Config{BaseURL: "https://api.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an access token you already have:
//	  cli, err = fkclient.New(&fetchkit.Config{
//	    BaseURL:     "https://api.example.com",
//	    AccessToken: "eyJhbGciOi...", // bearer token
//	  })
//
//	  // Or with refreshable credentials. The client renews the token
//	  // against TokenURL before expiry and coalesces concurrent refreshes
//	  // into a single request.
//	  cli, err = fkclient.New(&fetchkit.Config{
//	    BaseURL:      "https://api.example.com",
//	    TokenURL:     "https://login.example.com/oauth/token",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Bind resources and drive them through the state machine.
//	  apps := fkclient.BindList[App](cli, fetchkit.JSONResource[App]{CollectionPath: "v3/apps"})
//
//	  items, err := apps.FirstPage(ctx, fetchkit.NewQueryParams().WithPerPage(10), false)
//	  if err != nil { log.Fatal(err) }
//	  _ = items
//	}
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithToken, NewWithClientCredentials, and NewWithPassword that wrap New
// with the appropriate configuration.
package fkclient
