package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talkincode/toughcrm/config"
	"github.com/talkincode/toughcrm/internal/adminapi"
	"github.com/talkincode/toughcrm/internal/app"
	"github.com/talkincode/toughcrm/pkg/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	seed     = flag.Bool("seed", false, "insert demo customers and products, then exit")
	runjob   = flag.String("job", "", "run one maintenance job (restock|report|reminder|heartbeat), then exit")
	nodeID   = flag.Int64("node", 1, "snowflake node id")
)

func main() {
	flag.Parse()

	cfg := config.LoadConfig(*conffile)
	cfg.InitDirs()
	common.SetNodeID(*nodeID)

	oneShot := *initdb || *seed || *runjob != ""
	if oneShot {
		// one-shot commands must not start the scheduler
		cfg.Jobs.Enabled = false
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	switch {
	case *initdb:
		application.InitDb()
		zap.S().Info("database initialized")
		return
	case *seed:
		if err := application.SeedData(); err != nil {
			zap.S().Fatalf("seed failed: %v", err)
		}
		return
	case *runjob != "":
		if err := application.RunJobNow(*runjob); err != nil {
			zap.S().Fatal(err)
		}
		return
	}

	registry := adminapi.NewRegistry(adminapi.RegistryOptions{
		RestockThreshold: cfg.Jobs.RestockThreshold,
		RestockIncrement: cfg.Jobs.RestockIncrement,
	})
	server := adminapi.NewServer(application.Store(), registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := net.JoinHostPort(cfg.Web.Host, strconv.Itoa(cfg.Web.Port))
		zap.S().Infof("admin api listening on %s", addr)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("toughcrm stopped: %v", err)
	}
}
