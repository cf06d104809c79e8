// Package fetchkit provides the building blocks of a client-side
// network-resource engine: declarative endpoints, an observable resource
// state machine with incremental pagination, request deduplication, and a
// pluggable response cache.
//
// # Overview
//
// An Endpoint describes one logical API operation as pure data. Resolving it
// against a BaseURLProvider yields a Request descriptor that a Transport
// executes. Resource descriptors implement the CRUD capability interfaces
// (Readable, Listable, Creatable, Updatable, Deletable) for the subset of
// operations they support, and a Binding or ListBinding drives them through
// the idle → loading → available/failure state machine, deduplicating
// overlapping in-flight calls and discarding superseded results.
//
// A concrete transport with authentication, retries, interceptors and
// response caching is provided by the fkclient package, which wires
// configuration, the credential refresh coordinator, and this package's
// primitives into a ready-to-use client. Most consumers should start there:
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
//	  cli, err := fkclient.New(&fetchkit.Config{BaseURL: "https://api.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  apps := fkclient.BindList[App](cli, fetchkit.JSONResource[App]{CollectionPath: "v3/apps"})
//
//	  items, err := apps.FirstPage(ctx, fetchkit.NewQueryParams().WithPerPage(50), false)
//	  if err != nil { log.Fatal(err) }
//	  _ = items
//	}
//
// # Queries and pagination
//
// QueryParams expresses common list options (page, per_page, order_by,
// include, filters). ListBinding accumulates pages with a merge that never
// duplicates or reorders page content; PageIterator, FetchAllPages and
// StreamPages walk collections directly.
//
// # Errors
//
// Failures are typed: URLBuildError, TransportError, HTTPError,
// AuthRefreshError, DecodeError, plus sentinel errors such as
// ErrMissingBaseURL and ErrMissingLocalData. Helpers like IsAuthFailure and
// IsNotFound branch on common cases.
//
// # Interceptors and caching
//
// Request/response interceptors (logging, headers, auth, metrics) hook into
// the transport, and the Cache abstraction (memory, NATS KV, none) serves
// bounded-freshness GET responses under a CachingPolicy.
package fetchkit
