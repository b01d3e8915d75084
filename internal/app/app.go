package app

import (
	"sync"

	"github.com/akiyoshi81/risingstones-checkin-bot/internal/app/worker"
	"github.com/akiyoshi81/risingstones-checkin-bot/internal/config"
	"github.com/akiyoshi81/risingstones-checkin-bot/internal/storage/checkinlog"
)

type App struct{ cfg config.Config }

func New(cfg config.Config) *App { return &App{cfg: cfg} }

func (app *App) Run() error {
	accounts, err := app.cfg.LoadAccounts()
	if err != nil {
		return err
	}

	store, err := checkinlog.NewStore(app.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	var wg sync.WaitGroup
	for idx, acc := range accounts {
		wg.Add(1)
		go func(i int, a config.Account) {
			defer wg.Done()
			worker.Run(a, i, app.cfg, config.RisingStones, store)
		}(idx, acc)
	}
	wg.Wait()
	return nil
}
