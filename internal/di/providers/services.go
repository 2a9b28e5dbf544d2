package providers

import (
	"github.com/samber/do/v2"

	"libraryadmin/internal/book"
	"libraryadmin/internal/config"
	"libraryadmin/internal/lending"
	"libraryadmin/internal/logger"
	"libraryadmin/internal/platform/openlibrary"
	"libraryadmin/internal/student"
)

// ProvideOpenLibraryClient provides the rate-limited Open Library client.
func ProvideOpenLibraryClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return openlibrary.NewClient(cfg.OpenLibrary.UserAgent, cfg.OpenLibrary.RPS, cfg.OpenLibrary.MaxRetries), nil
}

// ProvideBookService provides the catalog service with ISBN lookup.
func ProvideBookService(i do.Injector) (*book.Service, error) {
	store := do.MustInvoke[*StoreHandle](i)
	client := do.MustInvoke[*openlibrary.Client](i)

	svc := book.NewService(store.Books).WithMetadataSource(book.NewOpenLibrarySource(client))
	return svc, nil
}

// ProvideStudentService provides the student registry service.
func ProvideStudentService(i do.Injector) (*student.Service, error) {
	store := do.MustInvoke[*StoreHandle](i)
	return student.NewService(store.Students), nil
}

// ProvideLendingService provides the ledger and fine service.
func ProvideLendingService(i do.Injector) (*lending.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	store := do.MustInvoke[*StoreHandle](i)

	svc := lending.NewService(store.Transactions, store.Books, store.Students,
		lending.Config{FineRate: cfg.Lending.FineRate}, log.Logger)
	log.Info("Lending service initialized", "fine_rate", cfg.Lending.FineRate.String())
	return svc, nil
}
