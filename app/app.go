package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/xsj0jsx/thin/listener"
	"github.com/xsj0jsx/thin/server"
)

type App struct {
	listeners []*listener.Listener
	await     sync.WaitGroup
}

func NewApp() *App {
	return &App{
		await: sync.WaitGroup{},
	}
}

// Init builds a listener for every configured section. Addresses and
// protocols are resolved here; no socket is created.
func (a *App) Init(runCtx context.Context) error {
	configs, err := loadListenerConfigs(runCtx)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	for i, config := range configs {
		lis, err := listener.New(config.Address, config.Options()...)
		if err != nil {
			return fmt.Errorf("app: listeners[%d]: %w", i, err)
		}
		logrus.Infof("app: listener: %s", lis)
		a.listeners = append(a.listeners, lis)
	}
	if len(a.listeners) == 0 {
		return fmt.Errorf("app: no available listeners")
	}
	return nil
}

func (a *App) Listeners() []*listener.Listener {
	return a.listeners
}

// Serve runs one acceptor per listener until runCtx is done or any acceptor
// fails; the first failure stops the others.
func (a *App) Serve(runCtx context.Context) error {
	servCtx, servCancel := context.WithCancel(runCtx)
	defer servCancel()

	servErrors := make(chan error, len(a.listeners))
	for _, lis := range a.listeners {
		a.await.Add(1)
		go func(acceptor *server.Acceptor) {
			defer a.await.Done()
			if err := acceptor.Serve(servCtx); err == nil || errors.Is(err, context.Canceled) {
				servErrors <- nil
			} else {
				servErrors <- err
			}
		}(server.NewAcceptor(lis))
	}
	select {
	case err := <-servErrors:
		servCancel()
		return a.term(err)
	case <-runCtx.Done():
		servCancel()
		return a.term(nil)
	}
}

// Close releases every listener; it is safe after Serve returned.
func (a *App) Close() error {
	errs := make([]error, 0, len(a.listeners))
	for _, lis := range a.listeners {
		errs = append(errs, lis.Close())
	}
	return errors.Join(errs...)
}

func (a *App) term(err error) error {
	a.await.Wait()
	return errors.Join(err, a.Close())
}
