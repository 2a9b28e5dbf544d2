package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"libraryadmin/internal/book"
	"libraryadmin/internal/config"
	"libraryadmin/internal/lending"
	"libraryadmin/internal/logger"
	"libraryadmin/internal/platform/postgres"
	"libraryadmin/internal/store/badgerstore"
	"libraryadmin/internal/student"
)

// StoreHandle exposes the repositories of the configured backend.
type StoreHandle struct {
	Books        book.Repository
	Students     student.Repository
	Transactions lending.Repository

	ping  func(ctx context.Context) error
	close func() error
}

// Ping reports whether the backend is reachable.
func (h *StoreHandle) Ping(ctx context.Context) error {
	return h.ping(ctx)
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.close()
}

// ProvideStore opens the backend selected by STORE_DRIVER.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Store.Driver {
	case config.DriverBadger:
		db, err := badgerstore.Open(cfg.Store.BadgerPath, log.Logger)
		if err != nil {
			return nil, err
		}
		return &StoreHandle{
			Books:        db.Books(),
			Students:     db.Students(),
			Transactions: db.Transactions(),
			ping:         db.Ping,
			close:        db.Close,
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(context.Background(), cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to database (%s): %w", config.RedactDSN(cfg.Store.DSN), err)
		}
		log.Info("Database connection OK", "dsn", config.RedactDSN(cfg.Store.DSN))

		timeout := cfg.Store.QueryTimeout
		return &StoreHandle{
			Books:        book.NewPostgresRepo(pool, timeout),
			Students:     student.NewPostgresRepo(pool, timeout),
			Transactions: lending.NewPostgresRepo(pool, timeout),
			ping:         pool.Ping,
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
