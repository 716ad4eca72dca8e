package main

import (
	"context"
	"log/slog"
	"luna/app/client/calendar"
	"luna/app/client/contactsdir"
	"luna/app/client/llm"
	"luna/app/client/telegram"
	"luna/app/config"
	"luna/app/service/conversation"
	"luna/app/service/engine"
	"luna/app/service/guard"
	"luna/app/service/orchestrator"
	"luna/app/service/queue"
	"luna/app/service/scheduler"
	"luna/app/service/store"
	"luna/app/service/tools"
	"luna/app/service/web"
	"luna/app/util/mylog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, store.New)
	do.Provide(di, telegram.NewClient)
	do.Provide(di, llm.NewClient)
	do.Provide(di, calendar.NewClient)
	do.Provide(di, contactsdir.NewClient)
	do.Provide(di, conversation.New)
	do.Provide(di, tools.New)
	do.Provide(di, orchestrator.New)
	do.Provide(di, guard.New)
	do.Provide(di, queue.New)
	do.Provide(di, scheduler.New)
	do.Provide(di, web.New)
	do.Provide(di, engine.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*scheduler.Service](di).Run(appCtx)
	go do.MustInvoke[*web.Service](di).Run()

	go func() {
		if err := do.MustInvoke[*engine.Service](di).Run(appCtx); err != nil {
			slog.Error("Engine stopped", "error", err)
			cancel()
		}
	}()

	<-appCtx.Done()
}
