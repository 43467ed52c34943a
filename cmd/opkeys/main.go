package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lthibault/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/blocknative/opkeys/api"
	"github.com/blocknative/opkeys/client/fallback"
	"github.com/blocknative/opkeys/client/rpc"
	"github.com/blocknative/opkeys/cmd/opkeys/config"
	fileS "github.com/blocknative/opkeys/cmd/opkeys/config/source/file"
	"github.com/blocknative/opkeys/contract"
	"github.com/blocknative/opkeys/deposit"
	"github.com/blocknative/opkeys/metrics"
	"github.com/blocknative/opkeys/monitor"
	"github.com/blocknative/opkeys/registry"
	"github.com/blocknative/opkeys/report"
	"github.com/blocknative/opkeys/validators"
	"github.com/blocknative/opkeys/verify"
)

const shutdownTimeout = 15 * time.Second

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:  "loglvl",
		Value: "info",
		Usage: "logging level: trace, debug, info, warn, error or fatal",
	},
	&cli.StringFlag{
		Name:  "logfmt",
		Value: "text",
		Usage: "format logs as text, json or none",
	},
	&cli.StringFlag{
		Name:  "config",
		Usage: "ini configuration file, reloaded on SIGHUP",
	},
	&cli.StringFlag{
		Name:  "datadir",
		Value: "/tmp/opkeys",
		Usage: "data directory for reports and networks.json",
	},
	&cli.StringFlag{
		Name:    "network",
		Value:   "mainnet",
		Usage:   "network preset: mainnet, goerli, holesky or an entry of networks.json",
		EnvVars: []string{"OPKEYS_NETWORK"},
	},
	&cli.StringSliceFlag{
		Name:     "rpc",
		Usage:    "execution client JSON-RPC endpoint, repeat for fallbacks in order of preference",
		EnvVars:  []string{"OPKEYS_RPC"},
		Required: true,
	},
	&cli.StringFlag{
		Name:  "lido-address",
		Usage: "overrides the Lido contract address of the network",
	},
	&cli.StringFlag{
		Name:  "nor-address",
		Usage: "overrides the NodeOperatorsRegistry contract address of the network",
	},
	&cli.StringSliceFlag{
		Name:  "historical-credentials",
		Usage: "overrides historical withdrawal credentials of the network",
	},
	&cli.StringFlag{
		Name:  "addr",
		Value: "0.0.0.0:18560",
		Usage: "listen address for the registry API",
	},
	&cli.StringFlag{
		Name:  "internal-addr",
		Value: "0.0.0.0:19560",
		Usage: "listen address for metrics and pprof",
	},
}

func main() {
	app := &cli.App{
		Name:   "opkeys",
		Usage:  "mirror the node operators registry and check its signing keys",
		Flags:  flags,
		Action: run,
		Commands: []*cli.Command{{
			Name:   "check",
			Usage:  "run a single sync cycle and print the report as json",
			Action: check,
		}},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type service struct {
	cfg *config.ConfigManager
	m   *metrics.Metrics

	ver *verify.VerificationManager
	exp *report.Exporter
	mon *monitor.Monitor
}

func setup(ctx context.Context, c *cli.Context, logger log.Logger) (*service, error) {
	s := &service{
		m: metrics.NewMetrics(),
	}

	s.cfg = config.NewConfigManager(fileS.NewSource(c.String("config")))
	if c.String("config") != "" {
		if err := s.cfg.Load(); err != nil {
			return nil, errors.WithMessage(err, "failed loading config file")
		}
	}

	chainCfg, err := loadChainConfig(c)
	if err != nil {
		return nil, err
	}
	lidoAddr, norAddr, err := chainCfg.Addresses()
	if err != nil {
		return nil, err
	}
	historical, err := chainCfg.Historical()
	if err != nil {
		return nil, err
	}
	domain, err := deposit.ComputeDomain(chainCfg.GenesisForkVersion)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to compute deposit domain")
	}

	logger.With(log.F{
		"network":            chainCfg.Name,
		"genesisForkVersion": chainCfg.GenesisForkVersion,
		"lido":               lidoAddr.Hex(),
		"nodeOperators":      norAddr.Hex(),
	}).Info("network loaded")

	caller := fallback.NewFallback(logger)
	caller.AttachMetrics(s.m)
	rpcMetrics := rpc.NewClientMetrics()
	rpcMetrics.AttachMetrics(s.m)
	for _, url := range c.StringSlice("rpc") {
		rc := rpc.NewClient(logger, url, rpc.Config{
			MaxBatchSize: s.cfg.Rpc.MaxBatchSize,
			Workers:      s.cfg.Rpc.Workers,
			RateLimit:    s.cfg.Rpc.RateLimit,
			Burst:        s.cfg.Rpc.Burst,
			BlockTag:     s.cfg.Rpc.BlockTag,
			Metrics:      rpcMetrics,
		})
		dialCtx, cancel := context.WithTimeout(ctx, s.cfg.Rpc.DialTimeout)
		err := rc.Dial(dialCtx)
		cancel()
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to dial %s", url)
		}
		s.cfg.Rpc.SubscribeForUpdates(rc)
		caller.AddClient(rc)
	}

	syncer := registry.NewSyncer(logger, contract.NewNodeOperators(norAddr, caller))
	syncer.AttachMetrics(s.m)

	verifyFn, err := verify.Backend(s.cfg.Verify.Backend)
	if err != nil {
		return nil, errors.WithMessage(err, "verify backend")
	}
	s.ver = verify.NewVerificationManager(logger, uint(s.cfg.Verify.QueueSize), verifyFn)
	s.ver.AttachMetrics(s.m)

	val, err := validators.NewValidator(logger, domain, contract.NewLido(lidoAddr, caller), s.ver, validators.Config{
		Historical: historical,
		CacheSize:  s.cfg.Verify.CacheSize,
		Queue:      verify.QueueSync,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create validator")
	}
	val.AttachMetrics(s.m)

	var exporter monitor.Exporter
	if s.cfg.Sync.Export {
		s.exp = report.NewExporter(logger, filepath.Join(c.String("datadir"), "reports"))
		s.exp.AttachMetrics(s.m)
		exporter = s.exp
	}

	s.mon = monitor.NewMonitor(logger, registry.NewSnapshot(), syncer, val, exporter)
	s.mon.AttachMetrics(s.m)

	return s, nil
}

func loadChainConfig(c *cli.Context) (*config.ChainConfig, error) {
	network := c.String("network")
	chainCfg := config.NewChainConfig()
	chainCfg.LoadNetwork(network)
	if !chainCfg.Loaded() {
		if err := chainCfg.ReadNetworkConfig(c.String("datadir"), network); err != nil {
			return nil, errors.WithMessage(err, "failed to load network")
		}
	}

	if a := c.String("lido-address"); a != "" {
		chainCfg.LidoAddress = a
	}
	if a := c.String("nor-address"); a != "" {
		chainCfg.NodeOperatorsAddress = a
	}
	if h := c.StringSlice("historical-credentials"); len(h) > 0 {
		chainCfg.HistoricalCredentials = h
	}
	return chainCfg, nil
}

// start runs the verification workers and the report exporter until ctx is done.
func (s *service) start(ctx context.Context) error {
	s.ver.RunVerify(ctx, uint(s.cfg.Verify.Workers))
	if s.exp != nil {
		if err := s.exp.Run(ctx); err != nil {
			return errors.WithMessage(err, "failed to start report exporter")
		}
	}
	return nil
}

func (s *service) stop() {
	if s.exp != nil {
		s.exp.Close()
	}
}

func run(c *cli.Context) error {
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	termSig := make(chan os.Signal, 2)
	signal.Notify(termSig, syscall.SIGTERM, syscall.SIGINT)
	go waitForSignal(cancel, termSig)

	logger := logger(c.String("loglvl"), c.String("logfmt"), os.Stdout)

	s, err := setup(ctx, c, logger)
	if err != nil {
		return err
	}

	apiLimitter, err := api.NewLimitter(s.cfg.Api.RateLimit, s.cfg.Api.Burst, s.cfg.Api.LimitterCacheSize)
	if err != nil {
		return errors.WithMessage(err, "failed to create api limitter")
	}
	s.cfg.Api.SubscribeForUpdates(apiLimitter)

	if c.String("config") != "" {
		reloadSig := make(chan os.Signal, 2)
		signal.Notify(reloadSig, syscall.SIGHUP)
		go reloadConfigSignal(logger, reloadSig, s.cfg)
	}

	if err := s.start(ctx); err != nil {
		return err
	}
	defer s.stop()

	internalMux := http.NewServeMux()
	metrics.AttachProfiler(internalMux)
	internalMux.Handle("/metrics", s.m.Handler())

	internalSrv := http.Server{
		Addr:    c.String("internal-addr"),
		Handler: internalMux,
	}
	go func() {
		logger.Info("internal server listening")
		if err := internalSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("internal server failed")
		}
	}()

	a := api.NewApi(logger, s.mon.Snapshot(), s.mon, apiLimitter)
	a.AttachMetrics(s.m)
	apiMux := http.NewServeMux()
	a.AttachToHandler(apiMux)

	srv := http.Server{
		Addr:              c.String("addr"),
		Handler:           apiMux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}
	go func() {
		logger.With(log.F{"addr": srv.Addr}).Info("api server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("api server failed")
			cancel()
		}
	}()

	logger.With(log.F{"interval": s.cfg.Sync.Interval.String()}).Info("monitor started")
	if err := s.mon.Run(ctx, s.cfg.Sync.Interval); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("monitor stopped")
	}

	logger.Info("shutdown initialized")
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("api server shutdown")
	}
	if err := internalSrv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("internal server shutdown")
	}
	logger.Info("shutdown finished")
	return nil
}

func check(c *cli.Context) error {
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	termSig := make(chan os.Signal, 2)
	signal.Notify(termSig, syscall.SIGTERM, syscall.SIGINT)
	go waitForSignal(cancel, termSig)

	logger := logger(c.String("loglvl"), c.String("logfmt"), os.Stderr)

	s, err := setup(ctx, c, logger)
	if err != nil {
		return err
	}
	if err := s.start(ctx); err != nil {
		return err
	}
	defer s.stop()

	r, err := s.mon.RunCycle(ctx)
	if err != nil {
		return errors.WithMessage(err, "cycle failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func waitForSignal(cancel context.CancelFunc, osSig chan os.Signal) {
	for range osSig {
		cancel()
		return
	}
}

func reloadConfigSignal(l log.Logger, osSig chan os.Signal, cfg *config.ConfigManager) {
	for range osSig {
		if err := cfg.Reload(); err != nil {
			l.WithError(err).Error("failed to reload config")
			continue
		}
		l.Info("config reloaded")
	}
}
