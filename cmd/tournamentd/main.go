// Command tournamentd runs one node of the tournament consensus network:
// it opens the local stores, wires the battle engine, tournament
// orchestrator, EBSL trust engine, and fork-choice/finality gadget
// together, and serves the node for the lifetime of the process.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tourneychain/config"
	"tourneychain/consensus/ebsl"
	"tourneychain/consensus/engine"
	"tourneychain/consensus/forkchoice"
	"tourneychain/consensus/tournament"
	"tourneychain/core/events"
	"tourneychain/core/types"
	"tourneychain/crypto"
	"tourneychain/observability/logging"
	"tourneychain/observability/metrics"
	"tourneychain/p2p"
	"tourneychain/rpc"
	"tourneychain/storage"
	"tourneychain/storage/history"
)

func main() {
	configFile := flag.String("config", "./tournamentd.toml", "Path to the configuration file")
	logFile := flag.String("log-file", "", "Optional path for a rotating JSON log file alongside stdout")
	historyPath := flag.String("history-db", "./tournamentd-data/history.db", "Path to the evidence-history sqlite database")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("TOURNEYCHAIN_ENV"))
	log := logging.Setup("tournamentd", env, logging.FileSink{Path: *logFile})

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	limits := config.ConsensusLimits{Battle: cfg.Battle, Timeouts: cfg.Timeouts}
	if err := config.ValidateConfig(limits); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	privKey, err := crypto.PrivateKeyFromBytes(mustHexDecode(cfg.ValidatorKey))
	if err != nil {
		log.Error("failed to load validator key", "err", err)
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		log.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	hist, err := history.Open(*historyPath)
	if err != nil {
		log.Error("failed to open history store", "err", err)
		os.Exit(1)
	}
	defer hist.Close()

	metricsReg := metrics.Registry()
	emitter := events.MultiEmitter{engine.NewMetricsEmitter(metricsReg), engine.NewLoggingEmitter(log)}

	ebslParams := ebsl.DefaultParameters()
	for dst, v := range map[*float64]float64{
		&ebslParams.Alpha: cfg.EBSL.Alpha, &ebslParams.TMin: cfg.EBSL.TMin, &ebslParams.TKill: cfg.EBSL.TKill,
		&ebslParams.DecayPos: cfg.EBSL.DecayPos, &ebslParams.DecayNeg: cfg.EBSL.DecayNeg,
	} {
		if v != 0 {
			*dst = v
		}
	}
	if cfg.EBSL.HistoryCap > 0 {
		ebslParams.HistoryCap = cfg.EBSL.HistoryCap
	}
	trust := ebsl.NewEngine(
		ebsl.NewStore(db),
		ebsl.WithParameters(ebslParams),
		ebsl.WithEmitter(emitter),
		ebsl.WithHistory(hist),
	)

	keys := engine.NewKeyStore()
	keys.Register(privKey.PubKey())

	genesis := &types.BlockHeader{Height: 0}
	driver, err := engine.New(genesis, keys, trust, engine.Config{
		TournamentParams: tournament.Params{StepBudget: cfg.Battle.StepBudget, GridSize: cfg.Battle.GridSize},
		Stakes:           forkchoice.StakeTable{},
		Clock:            engine.RealClock{},
		CommitWindow:     time.Duration(cfg.Timeouts.CommitWindowSeconds) * time.Second,
		RevealWindow:     time.Duration(cfg.Timeouts.RevealWindowSeconds) * time.Second,
	}, emitter, p2p.NewRetryBroadcaster(nil))
	if err != nil {
		log.Error("failed to construct consensus driver", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go driver.RunVoteIngester(ctx)

	rpcServer := rpc.NewServer(ctx, driver, trust, 50, []byte(cfg.GovernanceSecret))
	httpServer := &http.Server{Addr: cfg.RPCAddress, Handler: rpcServer, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("rpc server stopped", "err", err)
		}
	}()

	log.Info("tournamentd started", "listen", cfg.ListenAddress, "rpc", cfg.RPCAddress, "data_dir", cfg.DataDir)
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	log.Info("tournamentd shutting down")
}

func mustHexDecode(s string) []byte {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		panic(fmt.Sprintf("invalid validator key hex: %v", err))
	}
	return b
}
