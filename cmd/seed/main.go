// Command seed fills the store with demo students and books. With -subject it
// pulls real titles from Open Library instead of generating them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"libraryadmin/internal/book"
	"libraryadmin/internal/di"
	"libraryadmin/internal/logger"
	"libraryadmin/internal/platform/openlibrary"
	"libraryadmin/internal/student"
)

func main() {
	var (
		students = flag.Int("students", 20, "Number of demo students")
		books    = flag.Int("books", 50, "Number of generated books (ignored with -subject)")
		subject  = flag.String("subject", "", "Open Library subject to import books from")
		limit    = flag.Int("limit", 50, "Maximum number of books imported from Open Library")
	)
	flag.Parse()

	injector := di.NewContainer()
	defer func() { _ = injector.Shutdown() }()

	log, err := do.Invoke[*logger.Logger](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	s := &seeder{
		log:      log,
		books:    do.MustInvoke[*book.Service](injector),
		students: do.MustInvoke[*student.Service](injector),
	}

	ctx := context.Background()
	s.seedStudents(ctx, demoStudents(*students))

	inputs := demoBooks(*books)
	if *subject != "" {
		client := do.MustInvoke[*openlibrary.Client](injector)
		resp, err := client.SearchBySubject(ctx, *subject, *limit)
		if err != nil {
			log.Error("Open Library search failed", "subject", *subject, "error", err)
			os.Exit(1)
		}
		inputs = booksFromSearch(resp.Docs, *subject)
		log.Info("Fetched books from Open Library", "subject", *subject, "found", resp.NumFound, "usable", len(inputs))
	}
	s.seedBooks(ctx, inputs)
}
