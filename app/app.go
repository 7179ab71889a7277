package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dposnet/dposd/infrastructure/config"
	"github.com/dposnet/dposd/infrastructure/db/database"
	"github.com/dposnet/dposd/infrastructure/db/database/ldb"
	"github.com/dposnet/dposd/infrastructure/logger"
	"github.com/dposnet/dposd/infrastructure/os/signal"
	"github.com/dposnet/dposd/util/panics"
	"github.com/dposnet/dposd/util/profiling"
	"github.com/dposnet/dposd/version"
)

const (
	leveldbCacheSizeMiB = 256
	dbDirName           = "db"
)

type dposdApp struct {
	cfg *config.Config
}

// StartApp starts the dposd app, and blocks until it finishes running
func StartApp() error {
	// Load configuration and parse command line. This function also
	// initializes logging and configures it accordingly.
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, nil)

	app := &dposdApp{cfg: cfg}
	return app.main(nil)
}

func (app *dposdApp) main(startedChan chan<- struct{}) error {
	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// signal.ShutdownRequestChannel.
	interrupt := signal.InterruptListener()
	defer log.Infof("Shutdown complete")

	// Show version at startup.
	log.Infof("Version %s", version.Version())

	// Enable http profiling server if requested.
	if app.cfg.Profile != "" {
		profiling.Start(app.cfg.Profile, log)
	}

	// Return now if an interrupt signal was triggered.
	if signal.InterruptRequested(interrupt) {
		return nil
	}

	// Open the database
	databaseContext, err := openDB(app.cfg)
	if err != nil {
		log.Errorf("Loading database failed: %+v", err)
		return err
	}

	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := databaseContext.Close()
		if err != nil {
			log.Errorf("Failed to close the database: %s", err)
		}
	}()

	// Create componentManager and start it.
	componentManager, err := NewComponentManager(app.cfg, databaseContext)
	if err != nil {
		log.Errorf("Unable to start dposd: %+v", err)
		return err
	}

	defer func() {
		log.Infof("Gracefully shutting down dposd...")
		componentManager.Stop()
		log.Infof("Dposd shutdown complete")
	}()

	componentManager.Start()

	if startedChan != nil {
		startedChan <- struct{}{}
	}

	// Wait until the interrupt signal is received from an OS signal or
	// shutdown is requested through signal.ShutdownRequestChannel.
	<-interrupt
	return nil
}

func databasePath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, dbDirName)
}

func openDB(cfg *config.Config) (database.Database, error) {
	dbPath := databasePath(cfg)

	doesVersionFileExist, err := checkDatabaseVersion(dbPath)
	if err != nil {
		return nil, err
	}

	log.Infof("Loading database from '%s'", dbPath)
	db, err := ldb.NewLevelDB(dbPath, leveldbCacheSizeMiB)
	if err != nil {
		return nil, err
	}

	if !doesVersionFileExist {
		err = createDatabaseVersionFile(dbPath)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
