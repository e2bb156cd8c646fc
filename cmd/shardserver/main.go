// Command shardserver runs one shard of a graphlab-go cluster: it owns a
// single in-memory vertex/edge partition (internal/shard), serves the
// client/server RPC protocol (internal/shardserver) over TCP, and
// optionally registers its name with the etcd-backed shard registry
// (internal/zkmembers) so clients and peers can resolve it by id.
//
// Configuration is a YAML file (see Config in config.go) named on the
// command line:
//
//	shardserver -config shard0.yaml
//
// Each shard runs as its own process; a cluster of N shards is N
// shardserver invocations plus a shared etcd cluster for naming.
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

	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/dreamware/graphlab-go/internal/shard"
	"github.com/dreamware/graphlab-go/internal/shardserver"
	"github.com/dreamware/graphlab-go/internal/zkmembers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "", "path to the shard server YAML config")
	flag.Parse()
	if *configPath == "" {
		os.Stderr.WriteString("shardserver: -config is required\n")
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		os.Stderr.WriteString("shardserver: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("shardserver: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	s := shard.New(graphmodel.ShardId(cfg.ShardID))
	srv := shardserver.New(s)

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		sugar.Fatalw("listen failed", "addr", cfg.ListenAddr, "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if len(cfg.ZkEndpoints) > 0 {
		if err := registerShardName(ctx, cfg, sugar); err != nil {
			sugar.Errorw("shard-name registration failed, continuing unregistered", "error", err)
		}
	}

	go serveClients(ln, srv, sugar)
	sugar.Infow("shard server listening", "shard_id", cfg.ShardID, "addr", cfg.ListenAddr)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				sugar.Errorw("metrics server stopped", "error", err)
			}
		}()
		sugar.Infow("metrics listening", "addr", cfg.MetricsAddr)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	sugar.Infow("shutting down")
	_ = ln.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	<-shutdownCtx.Done()
	sugar.Infow("shard server stopped")
}

// registerShardName connects to etcd and publishes this shard's decimal id
// as its name under cfg.ZkPrefix.
func registerShardName(ctx context.Context, cfg Config, logger *zap.SugaredLogger) error {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.ZkEndpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return err
	}

	registry, err := zkmembers.NewShardNameRegistry(ctx, cli)
	if err != nil {
		return err
	}
	name := cfg.ZkPrefix + strconv.Itoa(cfg.ShardID)
	if err := registry.SetName(ctx, cfg.ShardID, name); err != nil {
		return err
	}
	logger.Infow("registered shard name", "shard_id", cfg.ShardID, "name", name)
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
