package app

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dposnet/dposd/domain/consensus"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/transactionpool"
	"github.com/dposnet/dposd/infrastructure/config"
	infrastructuredatabase "github.com/dposnet/dposd/infrastructure/db/database"
	"github.com/dposnet/dposd/infrastructure/metrics"
	"github.com/dposnet/dposd/util/mstime"
)

const (
	processQueuedBatchSize = 1000
	metricsShutdownTimeout = 5 * time.Second
)

// ComponentManager is a wrapper for all the dposd services
type ComponentManager struct {
	cfg             *config.Config
	consensus       externalapi.Consensus
	transactionPool transactionpool.TransactionPool
	metricsServer   *http.Server

	quit              chan struct{}
	started, shutdown int32
}

// NewComponentManager returns a new ComponentManager instance with an
// initialized ledger. Use Start() to begin all services within this
// ComponentManager.
func NewComponentManager(cfg *config.Config, db infrastructuredatabase.Database) (*ComponentManager, error) {
	dposConsensus, err := consensus.NewFactory().NewConsensus(cfg.NetParams(), db)
	if err != nil {
		return nil, err
	}
	err = dposConsensus.Init(context.Background())
	if err != nil {
		dposConsensus.Stop()
		return nil, err
	}

	transactionPool := transactionpool.New(cfg.TransactionPoolConfig(), dposConsensus, mstime.SystemClock{})
	dposConsensus.SetTransactionPoolUpdater(transactionPool)

	var metricsServer *http.Server
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsListen, Handler: mux}
	}

	return &ComponentManager{
		cfg:             cfg,
		consensus:       dposConsensus,
		transactionPool: transactionPool,
		metricsServer:   metricsServer,
		quit:            make(chan struct{}),
	}, nil
}

// Start launches all the dposd services.
func (a *ComponentManager) Start() {
	// Already started?
	if atomic.AddInt32(&a.started, 1) != 1 {
		return
	}

	log.Tracef("Starting dposd")

	if a.metricsServer != nil {
		spawn(func() {
			log.Infof("Metrics server listening on %s", a.metricsServer.Addr)
			err := a.metricsServer.ListenAndServe()
			if err != nil && err != http.ErrServerClosed {
				log.Errorf("Metrics server stopped: %s", err)
			}
		})
	}

	spawn(a.maintainTransactionPool)
}

// maintainTransactionPool periodically expires stale pool entries and
// validates the transactions queued in bulk
func (a *ComponentManager) maintainTransactionPool() {
	ticker := time.NewTicker(a.cfg.ExpiryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.quit:
			return
		case now := <-ticker.C:
			expired := a.transactionPool.ExpireTransactions(mstime.ReduceToMillisecondPrecision(now))
			if len(expired) > 0 {
				log.Debugf("Expired %d pool transactions", len(expired))
			}
			accepted, rejected := a.transactionPool.ProcessQueued(processQueuedBatchSize)
			if len(accepted)+len(rejected) > 0 {
				log.Debugf("Processed queued transactions: %d accepted, %d rejected",
					len(accepted), len(rejected))
			}
		}
	}
}

// Stop gracefully shuts down all the dposd services.
func (a *ComponentManager) Stop() {
	// Make sure this only happens once.
	if atomic.AddInt32(&a.shutdown, 1) != 1 {
		log.Infof("Dposd is already in the process of shutting down")
		return
	}

	log.Warnf("Dposd shutting down")

	close(a.quit)

	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		err := a.metricsServer.Shutdown(ctx)
		if err != nil {
			log.Errorf("Error stopping the metrics server: %+v", err)
		}
	}

	a.consensus.Stop()
}

// Consensus returns the ledger managed by this ComponentManager
func (a *ComponentManager) Consensus() externalapi.Consensus {
	return a.consensus
}

// TransactionPool returns the transaction pool managed by this ComponentManager
func (a *ComponentManager) TransactionPool() transactionpool.TransactionPool {
	return a.transactionPool
}
