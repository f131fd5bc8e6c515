package actions

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/relloyd/bqload/blobstore"
	"github.com/relloyd/bqload/constants"
	"github.com/relloyd/bqload/helper"
	"github.com/relloyd/bqload/loadconfig"
	"github.com/relloyd/bqload/loader"
	"github.com/relloyd/bqload/logger"
	"github.com/relloyd/bqload/stats"
	"github.com/relloyd/bqload/trigger"
)

// HistoricalLoadConfig loads the partitions listed in a trigger file.
type HistoricalLoadConfig struct {
	TriggerFile               string `errorTxt:"trigger file" mandatory:"yes"`
	ProjectID                 string `errorTxt:"project" mandatory:"yes"`
	ConfigFile                string `errorTxt:"config-file" mandatory:"yes"`
	DataSet                   string
	Location                  string
	S3Region                  string
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	StatsDumpFrequencySeconds int
	StackDumpOnPanic          bool
}

// SetupHistoricalLoad copies values from genericCfg to actionCfg ready for a trigger file load.
func SetupHistoricalLoad(genericCfg interface{}, actionCfg interface{}) error {
	src := genericCfg.(*LoadConfig)
	tgt := actionCfg.(*HistoricalLoadConfig)
	tgt.TriggerFile = src.InputFile
	tgt.ProjectID = src.ProjectID
	tgt.ConfigFile = src.ConfigFile
	tgt.DataSet = src.DataSet
	tgt.Location = src.Location
	tgt.S3Region = src.S3Region
	tgt.LogLevel = src.LogLevel
	tgt.StatsDumpFrequencySeconds = src.StatsDumpFrequencySeconds
	tgt.StackDumpOnPanic = src.StackDumpOnPanic
	return nil
}

func RunHistoricalLoad(cfg interface{}) error {
	c := cfg.(*HistoricalLoadConfig)
	log := logger.NewLogger(constants.DefaultServiceName, c.LogLevel, c.StackDumpOnPanic)
	if err := helper.ValidateStructIsPopulated(c); err != nil {
		return err
	}
	ctx := context.Background()
	stores, closeStores := newStoreRegistry(ctx, c.S3Region, log)
	defer closeStores()
	wh, err := newWarehouse(ctx, c.ProjectID, c.Location)
	if err != nil {
		return err
	}
	defer closeWarehouse(log, wh)
	tl := &triggerLoader{
		stores:         stores,
		warehouse:      wh,
		projectID:      c.ProjectID,
		configFile:     c.ConfigFile,
		defaultDataSet: c.DataSet,
		statsFrequency: c.StatsDumpFrequencySeconds,
		log:            log,
	}
	_, err = tl.load(ctx, c.TriggerFile, nil)
	return err
}

// triggerLoader runs the tasks of trigger files against one project and load config.
type triggerLoader struct {
	stores         *blobstore.Registry
	warehouse      loader.Warehouse
	projectID      string
	configFile     string
	defaultDataSet string
	statsFrequency int
	log            logger.Logger
}

// load reads the trigger file and the load config then runs every task.
// The config is read on every call so that changes are picked up by long running processes.
// An error is only returned when the run could not start.
func (tl *triggerLoader) load(ctx context.Context, triggerLocation string, sm stats.StatsManager) (RunSummary, error) {
	b, err := tl.stores.ReadAll(ctx, triggerLocation)
	if err != nil {
		return RunSummary{}, errors.Wrapf(err, "unable to read trigger file %v", triggerLocation)
	}
	tasks, err := trigger.Parse(bytes.NewReader(b), triggerLocation)
	if err != nil {
		return RunSummary{}, err
	}
	configs, err := loadconfig.Load(ctx, tl.configFile, tl.stores)
	if err != nil {
		return RunSummary{}, err
	}
	tl.log.Debug("load config has active keys: ", configs.Keys())
	if sm == nil {
		sm = stats.NewRunStats(tl.log, stats.SetStatsDumpFrequency(tl.statsFrequency))
	}
	r := &Runner{
		Configs:        configs,
		Executor:       loader.NewExecutor(tl.warehouse, tl.log),
		Relocator:      blobstore.NewRelocator(tl.stores, tl.log),
		ProjectID:      tl.projectID,
		DefaultDataSet: tl.defaultDataSet,
		Stats:          sm,
		Log:            tl.log,
	}
	return r.Run(ctx, tasks), nil
}
