package actions

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/relloyd/bqload/constants"
	"github.com/relloyd/bqload/gcp/pubsub"
	"github.com/relloyd/bqload/helper"
	"github.com/relloyd/bqload/logger"
)

// ListenConfig loads trigger files as their Cloud Storage notifications arrive on a Pub/Sub subscription.
type ListenConfig struct {
	ProjectID                 string `errorTxt:"project" mandatory:"yes"`
	SubscriptionID            string `errorTxt:"subscription" mandatory:"yes"`
	ConfigFile                string `errorTxt:"config-file" mandatory:"yes"`
	DataSet                   string
	Location                  string
	S3Region                  string
	MaxInFlight               int
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	StatsDumpFrequencySeconds int
	StackDumpOnPanic          bool
}

// SetupListen copies values from genericCfg to actionCfg ready to listen for trigger files.
func SetupListen(genericCfg interface{}, actionCfg interface{}) error {
	src := genericCfg.(*LoadConfig)
	tgt := actionCfg.(*ListenConfig)
	tgt.ProjectID = src.ProjectID
	tgt.SubscriptionID = src.SubscriptionID
	tgt.ConfigFile = src.ConfigFile
	tgt.DataSet = src.DataSet
	tgt.Location = src.Location
	tgt.S3Region = src.S3Region
	tgt.MaxInFlight = src.MaxInFlight
	tgt.LogLevel = src.LogLevel
	tgt.StatsDumpFrequencySeconds = src.StatsDumpFrequencySeconds
	tgt.StackDumpOnPanic = src.StackDumpOnPanic
	return nil
}

// RunListen blocks until interrupted.
func RunListen(cfg interface{}) error {
	c := cfg.(*ListenConfig)
	log := logger.NewLogger(constants.DefaultServiceName, c.LogLevel, c.StackDumpOnPanic)
	if err := helper.ValidateStructIsPopulated(c); err != nil {
		return err
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = constants.DefaultPubSubMaxInFlight
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	stores, closeStores := newStoreRegistry(ctx, c.S3Region, log)
	defer closeStores()
	wh, err := newWarehouse(ctx, c.ProjectID, c.Location)
	if err != nil {
		return err
	}
	defer closeWarehouse(log, wh)
	l, err := newListener(ctx, pubsub.ListenerConfig{
		ProjectID:      c.ProjectID,
		SubscriptionID: c.SubscriptionID,
		MaxInFlight:    c.MaxInFlight,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Close(); err != nil {
			log.Warn("error closing Pub/Sub client: ", err)
		}
	}()
	tl := &triggerLoader{
		stores:         stores,
		warehouse:      wh,
		projectID:      c.ProjectID,
		configFile:     c.ConfigFile,
		defaultDataSet: c.DataSet,
		statsFrequency: c.StatsDumpFrequencySeconds,
		log:            log,
	}
	err = l.Listen(ctx, triggerHandler(tl, &sync.Mutex{}))
	log.Info("listener stopped")
	return err
}

// triggerHandler loads the trigger file named by each notification.
// Runs are serialised by mu.
func triggerHandler(tl *triggerLoader, mu *sync.Mutex) pubsub.Handler {
	return func(ctx context.Context, n pubsub.Notification) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := tl.load(ctx, n.URI(), nil)
		return err
	}
}
