package actions

import (
	"context"
	"strings"

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

// DescriptorLoadConfig loads the files named by a descriptor.
// The project and dataset come from the descriptor itself.
type DescriptorLoadConfig struct {
	DescriptorFile            string `errorTxt:"descriptor file" mandatory:"yes"`
	Location                  string
	S3Region                  string
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	StatsDumpFrequencySeconds int
	StackDumpOnPanic          bool
}

// SetupDescriptorLoad copies values from genericCfg to actionCfg ready for a descriptor load.
func SetupDescriptorLoad(genericCfg interface{}, actionCfg interface{}) error {
	src := genericCfg.(*LoadConfig)
	tgt := actionCfg.(*DescriptorLoadConfig)
	tgt.DescriptorFile = src.InputFile
	tgt.Location = src.Location
	tgt.S3Region = src.S3Region
	tgt.LogLevel = src.LogLevel
	tgt.StatsDumpFrequencySeconds = src.StatsDumpFrequencySeconds
	tgt.StackDumpOnPanic = src.StackDumpOnPanic
	return nil
}

func RunDescriptorLoad(cfg interface{}) error {
	c := cfg.(*DescriptorLoadConfig)
	log := logger.NewLogger(constants.DefaultServiceName, c.LogLevel, c.StackDumpOnPanic)
	if err := helper.ValidateStructIsPopulated(c); err != nil {
		return err
	}
	ctx := context.Background()
	stores, closeStores := newStoreRegistry(ctx, c.S3Region, log)
	defer closeStores()
	dl := &descriptorLoader{
		stores:         stores,
		location:       c.Location,
		statsFrequency: c.StatsDumpFrequencySeconds,
		log:            log,
	}
	_, err := dl.load(ctx, c.DescriptorFile, nil)
	return err
}

type descriptorLoader struct {
	stores         *blobstore.Registry
	location       string
	statsFrequency int
	log            logger.Logger
}

func (dl *descriptorLoader) load(ctx context.Context, descriptorLocation string, sm stats.StatsManager) (RunSummary, error) {
	b, err := dl.stores.ReadAll(ctx, descriptorLocation)
	if err != nil {
		return RunSummary{}, errors.Wrapf(err, "unable to read descriptor %v", descriptorLocation)
	}
	d, err := trigger.ParseDescriptor(b)
	if err != nil {
		return RunSummary{}, errors.Wrapf(err, "descriptor %v", descriptorLocation)
	}
	query := d.InsertQuery
	if strings.TrimSpace(query) == "" {
		sqlFile := d.SqlFileName(descriptorLocation)
		q, err := dl.stores.ReadAll(ctx, sqlFile)
		if err != nil {
			return RunSummary{}, errors.Wrapf(err, "unable to read insert query %v", sqlFile)
		}
		query = string(q)
	}
	configs, err := loadconfig.NewStoreFromEntries(descriptorEntry(d, query))
	if err != nil {
		return RunSummary{}, err
	}
	wh, err := newWarehouse(ctx, d.Target.ProjectID, dl.location)
	if err != nil {
		return RunSummary{}, err
	}
	defer closeWarehouse(dl.log, wh)
	if sm == nil {
		sm = stats.NewRunStats(dl.log, stats.SetStatsDumpFrequency(dl.statsFrequency))
	}
	r := &Runner{
		Configs:        configs,
		Executor:       loader.NewExecutor(wh, dl.log),
		Relocator:      blobstore.NewRelocator(dl.stores, dl.log),
		ProjectID:      d.Target.ProjectID,
		DefaultDataSet: d.Target.Dataset,
		Stats:          sm,
		Log:            dl.log,
	}
	return r.Run(ctx, []trigger.PartitionTask{d.Task()}), nil
}

// descriptorEntry builds the config entry that the runner resolves for the task of d.
// The first source URI decides the scheme of bare processed and error bucket names.
func descriptorEntry(d *trigger.Descriptor, query string) loadconfig.Entry {
	return loadconfig.Entry{
		JobID:           d.Target.Table,
		DataSet:         d.Target.Dataset,
		Table:           d.Target.Table,
		DataFilePath:    d.SourceURIs[0],
		SourceFormat:    d.SourceFormat,
		InsertQuery:     query,
		ProcessedBucket: d.ProcessedBucket,
		ErrorBucket:     d.ErrorBucket,
		ArchiveFiles:    d.Archive(),
		Active:          true,
	}
}
