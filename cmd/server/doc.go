// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

/*
Package main is the entry point for the NextPage server.

NextPage serves a static book catalog exported as CSV: filtering, genre
similarity recommendations and catalog analytics over a JSON API.

# Startup

Everything derived from the catalog is built once before the server listens:

 1. Configuration: Koanf v2 defaults, optional YAML file, environment
 2. Logging: zerolog, JSON or console
 3. Catalog: CSV read into records and deduplicated books
 4. Recommender: genre and rating feature matrix plus a response cache
 5. Analytics: in-memory DuckDB table of the books (ANALYTICS_ENABLED)
 6. Supervisor tree: cache maintenance and the HTTP server

A catalog that cannot be read or yields no usable titles stops startup.

# Supervision

	nextpage
	├── data-layer
	│   └── recommend-cache (expired entry cleanup)
	└── api-layer
	    └── http-server

# Example

	export CATALOG_PATH=./goodreads_books.csv
	export HTTP_PORT=8080
	./nextpage

	curl 'localhost:8080/api/v1/recommendations/similar?title=Dune&k=5'

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections and drains in-flight requests for HTTP_SHUTDOWN_TIMEOUT.

SIGHUP re-reads the configuration, applies LOG_LEVEL and drops cached
recommendation responses. The catalog is not reloaded. A configuration that
fails to load or validate is logged and the running settings are kept.
*/
package main
