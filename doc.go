// Package docstore treats PostgreSQL and SQLite as JSON document stores.
//
// Documents are JSON values stored as the sole column of a table row,
// addressed by a conventional identifier field (default "Id") and queried
// by JSON-field comparison, containment, or JSON-path predicates. This
// package holds the parts shared by both backends: the operation
// vocabulary, field criteria, the dialect-neutral statement builder, named
// parameter binding, and the execution layer. The postgres and sqlite
// sub-packages add the dialect-specific statements and the document API.
//
// # Stores
//
// Each backend exposes a Store built on a dialect.Driver:
//
//	store, err := postgres.Open("postgres://localhost/app?sslmode=disable")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	ctx := context.Background()
//	if err := store.EnsureTable(ctx, "customers"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.EnsureKey(ctx, "customers"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Documents
//
// Any value the configured serializer can marshal is a document. The
// identifier field must appear in the serialized form:
//
//	type Customer struct {
//	    Id    string
//	    Name  string
//	    Score int
//	}
//
//	err := store.Insert(ctx, "customers", Customer{Id: "c1", Name: "First"})
//
// Typed reads are package-level generic functions:
//
//	c, ok, err := postgres.FindByID[Customer](ctx, store, "customers", "c1")
//	all, err := postgres.FindByField[Customer](ctx, store, "customers",
//	    docstore.GT("Score", docstore.Int(10)))
//
// # Divergent patch semantics
//
// Partial updates merge per the backend's own JSON machinery: Postgres
// applies the || operator (shallow, top-level key replacement) while SQLite
// applies json_patch (deep, key-by-key merge). The two backends genuinely
// disagree on nested documents and the difference is part of each package's
// contract rather than papered over here.
//
// # Concurrency
//
// Every document operation issues exactly one SQL statement and opens no
// transactions. Atomicity across operations is the caller's concern: begin
// a transaction on the driver and pass it through Store.WithTx.
package docstore
