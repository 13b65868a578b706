// Package app assembles the account store from configuration.
package app

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/atinyakov/AccountKeeper/internal/client/storage"
	"github.com/atinyakov/AccountKeeper/internal/codec"
	"github.com/atinyakov/AccountKeeper/internal/config"
	"github.com/atinyakov/AccountKeeper/internal/db"
	"github.com/atinyakov/AccountKeeper/internal/repository"
	"github.com/atinyakov/AccountKeeper/internal/store"
)

// App holds the hydrated store and the resources behind its slot.
type App struct {
	Store *store.Store
	Slot  storage.Slot

	closers     []io.Closer
	unsubscribe func()
}

// Open builds the slot selected by opts, loads the store from it and
// subscribes log to state changes.
func Open(opts *config.Options, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	c, err := codec.ByName(opts.Format)
	if err != nil {
		return nil, err
	}

	a := &App{}
	a.Slot, err = a.openSlot(opts)
	if err != nil {
		return nil, multierr.Append(err, a.Close())
	}

	a.Store = store.Open(a.Slot,
		store.WithLogger(log),
		store.WithKey(opts.Key),
		store.WithCodec(c),
	)
	a.unsubscribe = a.Store.Subscribe(func(st store.State) {
		log.Debug("state changed",
			zap.Int("count", st.Count()),
			zap.Bool("loading", st.IsLoading),
			zap.String("last_error", st.LastError),
		)
	})

	log.Info("account store ready",
		zap.String("backend", opts.Backend),
		zap.String("slot", a.Slot.Path()),
		zap.String("format", c.Name()),
		zap.Int("accounts", a.Store.Count()),
	)
	return a, nil
}

func (a *App) openSlot(opts *config.Options) (storage.Slot, error) {
	switch opts.Backend {
	case config.BackendMemory:
		return storage.NewMemorySlot(), nil
	case config.BackendFile:
		return storage.NewFileSlot(opts.Path)
	case config.BackendBolt:
		s, err := storage.OpenBoltSlot(opts.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	case config.BackendPostgres:
		conn, err := db.InitPostgres(opts.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		a.closers = append(a.closers, conn)
		repo := repository.NewPostgresSlotRepository(conn)
		if opts.DatabaseTimeout > 0 {
			repo.Timeout = opts.DatabaseTimeout
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}

// Close releases every resource opened for the slot.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i].Close())
	}
	a.closers = nil
	return err
}
