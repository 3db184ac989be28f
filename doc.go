/*
Package coredata fetches WordPress REST entities, embed previews and post autosaves
through explicit step resolvers, and keeps what they receive in a client record store.

Resolvers (package resolvers) never perform I/O. Each one yields a description of what it
needs (an entity lookup, a REST request) and is resumed with the answer, until it yields a
"receive" action for the store. The Runner (package runner) performs those steps against an
entity registry, a Fetcher and a RecordStore, all injectable through ports.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/coredata"
	)

	func main() {
		client, err := coredata.New("https://example.com/wp-json",
			coredata.WithApplicationPassword("admin", "xxxx xxxx xxxx xxxx"),
		)
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()

		// postType entities are discovered from /wp/v2/types on first use.
		post, err := client.EntityRecord(ctx, "postType", "post", "1")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(post["title"])

		// URLs the site cannot embed resolve to false, not an error.
		preview, err := client.EmbedPreview(ctx, "https://youtube.com/watch?v=xyz")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(preview)
	}
*/
package coredata
