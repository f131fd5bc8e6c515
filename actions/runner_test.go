package actions_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/bqload/actions"
	"github.com/relloyd/bqload/blobstore"
	storemocks "github.com/relloyd/bqload/blobstore/mocks"
	"github.com/relloyd/bqload/loadconfig"
	"github.com/relloyd/bqload/loader"
	warehousemocks "github.com/relloyd/bqload/loader/mocks"
	"github.com/relloyd/bqload/logger"
	"github.com/relloyd/bqload/trigger"
)

const insertQuery = "INSERT INTO TARGET_TABLE SELECT * FROM EXTERNAL_TABLE"

func newEntry(jobID string) loadconfig.Entry {
	return loadconfig.Entry{
		JobID:           jobID,
		DataSet:         "ds",
		DataFilePath:    "gs://landing/" + jobID,
		SourceFormat:    "ORC",
		InsertQuery:     insertQuery,
		ProcessedBucket: "processed",
		ErrorBucket:     "errors",
		ArchiveFiles:    true,
		Active:          true,
	}
}

func partitionFiles(prefix string, n int) []string {
	names := []string{prefix} // directory marker, never moved.
	for i := 0; i < n; i++ {
		names = append(names, fmt.Sprintf("%vpart-%05d.orc", prefix, i))
	}
	return names
}

var _ = Describe("Runner", func() {
	var (
		ctrl   *gomock.Controller
		ctx    context.Context
		wh     *warehousemocks.MockWarehouse
		store  *storemocks.MockStore
		runner *actions.Runner
	)

	newRunner := func(entries ...loadconfig.Entry) *actions.Runner {
		configs, err := loadconfig.NewStoreFromEntries(entries...)
		Expect(err).NotTo(HaveOccurred())
		log := logger.NewLogger("bqload", "error", true)
		stores := blobstore.NewRegistry()
		stores.Register("gs", store)
		return &actions.Runner{
			Configs:   configs,
			Executor:  loader.NewExecutor(wh, log),
			Relocator: blobstore.NewRelocator(stores, log),
			ProjectID: "proj",
			Log:       log,
		}
	}

	target := func(table string) loader.TableRef {
		return loader.TableRef{ProjectID: "proj", Dataset: "ds", Table: table}
	}

	expectMoves := func(srcBucket string, names []string, dstBucket string) {
		for _, name := range names[1:] {
			store.EXPECT().Copy(gomock.Any(), srcBucket, name, dstBucket, name).Return(nil)
			store.EXPECT().Delete(gomock.Any(), srcBucket, name).Return(nil)
		}
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		ctx = context.Background()
		wh = warehousemocks.NewMockWarehouse(ctrl)
		store = storemocks.NewMockStore(ctrl)
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Context("when the query job succeeds", func() {
		It("adds the row delta and moves the files to the processed location", func() {
			runner = newRunner(newEntry("t1"))
			names := partitionFiles("t1/2021-04/", 10)
			var rendered string
			var ref loader.ExternalReference
			gomock.InOrder(
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(100), nil),
				wh.EXPECT().RunQuery(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, q string, r loader.ExternalReference) (loader.QueryStats, error) {
						rendered, ref = q, r
						return loader.QueryStats{JobID: "job1", DMLAffectedRows: 10}, nil
					}),
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(110), nil),
			)
			store.EXPECT().List(gomock.Any(), "landing", "t1/2021-04/").Return(names, nil)
			expectMoves("landing", names, "processed")

			summary := runner.Run(ctx, []trigger.PartitionTask{{TableKey: "t1", Partition: "2021-04", Line: 1}})

			Expect(summary.TotalRowsAdded).To(Equal(int64(10)))
			Expect(summary.TasksSucceeded).To(Equal(1))
			Expect(summary.TasksFailed).To(Equal(0))
			Expect(summary.Results).To(HaveLen(1))
			res := summary.Results[0]
			Expect(res.Status).To(Equal(loader.StatusSucceeded))
			Expect(res.RowsAdded).To(Equal(int64(10)))
			Expect(res.DMLAffectedRows).To(Equal(int64(10)))
			Expect(res.SourceURIs).To(Equal([]string{"gs://landing/t1/2021-04/*"}))
			Expect(res.Relocation.Moved).To(Equal(10))
			Expect(res.Relocation.Destination).To(Equal("gs://processed"))
			Expect(ref.SourceURIs).To(Equal([]string{"gs://landing/t1/2021-04/*"}))
			Expect(ref.Format).To(Equal(loader.FormatORC))
			Expect(rendered).To(Equal(fmt.Sprintf("INSERT INTO ds.t1 SELECT * FROM %v", ref.Alias)))
		})
	})

	Context("when the query job fails", func() {
		It("moves the files to the error location and adds no rows", func() {
			runner = newRunner(newEntry("t1"))
			names := partitionFiles("t1/2021-04/", 10)
			gomock.InOrder(
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(100), nil),
				wh.EXPECT().RunQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(loader.QueryStats{}, errors.New("syntax error")),
			)
			store.EXPECT().List(gomock.Any(), "landing", "t1/2021-04/").Return(names, nil)
			expectMoves("landing", names, "errors")

			summary := runner.Run(ctx, []trigger.PartitionTask{{TableKey: "t1", Partition: "2021-04", Line: 1}})

			Expect(summary.TotalRowsAdded).To(Equal(int64(0)))
			Expect(summary.TasksFailed).To(Equal(1))
			res := summary.Results[0]
			Expect(res.Status).To(Equal(loader.StatusFailed))
			Expect(res.Err).To(MatchError(ContainSubstring("syntax error")))
			Expect(res.Relocation.Moved).To(Equal(10))
			Expect(res.Relocation.Destination).To(Equal("gs://errors"))
		})
	})

	Context("when one of two tasks fails", func() {
		It("runs both tasks and only counts rows of the one that succeeded", func() {
			runner = newRunner(newEntry("t1"), newEntry("t2"))
			t1Names := partitionFiles("t1/2021-04/", 2)
			t2Names := partitionFiles("t2/2021-04/", 3)
			gomock.InOrder(
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(0), nil),
				wh.EXPECT().RunQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(loader.QueryStats{}, nil),
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(5), nil),
				wh.EXPECT().RowCount(gomock.Any(), target("t2")).Return(int64(7), nil),
				wh.EXPECT().RunQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(loader.QueryStats{}, errors.New("job failed")),
			)
			store.EXPECT().List(gomock.Any(), "landing", "t1/2021-04/").Return(t1Names, nil)
			expectMoves("landing", t1Names, "processed")
			store.EXPECT().List(gomock.Any(), "landing", "t2/2021-04/").Return(t2Names, nil)
			expectMoves("landing", t2Names, "errors")

			summary := runner.Run(ctx, []trigger.PartitionTask{
				{TableKey: "t1", Partition: "2021-04", Line: 1},
				{TableKey: "t2", Partition: "2021-04", Line: 2},
			})

			Expect(summary.TotalRowsAdded).To(Equal(int64(5)))
			Expect(summary.TasksSucceeded).To(Equal(1))
			Expect(summary.TasksFailed).To(Equal(1))
			Expect(summary.Results).To(HaveLen(2))
			Expect(summary.Results[0].TableKey).To(Equal("t1"))
			Expect(summary.Results[1].TableKey).To(Equal("t2"))
			Expect(summary.Results[1].RowsAdded).To(Equal(int64(0)))
		})
	})

	Context("when there is no config for a table key", func() {
		It("fails the task without moving files and continues with the next task", func() {
			runner = newRunner(newEntry("t1"))
			names := partitionFiles("t1/2021-04/", 1)
			gomock.InOrder(
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(1), nil),
				wh.EXPECT().RunQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(loader.QueryStats{}, nil),
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(4), nil),
			)
			store.EXPECT().List(gomock.Any(), "landing", "t1/2021-04/").Return(names, nil)
			expectMoves("landing", names, "processed")

			summary := runner.Run(ctx, []trigger.PartitionTask{
				{TableKey: "missing", Partition: "2021-04", Line: 1},
				{TableKey: "t1", Partition: "2021-04", Line: 2},
			})

			Expect(summary.TasksFailed).To(Equal(1))
			Expect(summary.TasksSucceeded).To(Equal(1))
			Expect(summary.TotalRowsAdded).To(Equal(int64(3)))
			missing := summary.Results[0]
			Expect(missing.Status).To(Equal(loader.StatusFailed))
			Expect(errors.Is(missing.Err, loadconfig.ErrConfigNotFound)).To(BeTrue())
			Expect(missing.Relocation.Attempted()).To(BeFalse())
		})
	})

	Context("when the insert query template has no target marker", func() {
		It("fails the task before running any query and routes the files to the error location", func() {
			e := newEntry("t1")
			e.InsertQuery = "INSERT INTO ds.t1 SELECT * FROM EXTERNAL_TABLE"
			runner = newRunner(e)
			names := partitionFiles("t1/2021-04/", 1)
			store.EXPECT().List(gomock.Any(), "landing", "t1/2021-04/").Return(names, nil)
			expectMoves("landing", names, "errors")

			summary := runner.Run(ctx, []trigger.PartitionTask{{TableKey: "t1", Partition: "2021-04"}})

			var templateErr *loader.TemplateError
			Expect(errors.As(summary.Results[0].Err, &templateErr)).To(BeTrue())
			Expect(summary.TasksFailed).To(Equal(1))
		})
	})

	Context("when archiving is disabled", func() {
		It("leaves the files in place", func() {
			e := newEntry("t1")
			e.ArchiveFiles = false
			runner = newRunner(e)
			gomock.InOrder(
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(0), nil),
				wh.EXPECT().RunQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(loader.QueryStats{}, nil),
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(2), nil),
			)

			summary := runner.Run(ctx, []trigger.PartitionTask{{TableKey: "t1", Partition: "2021-04"}})

			Expect(summary.TotalRowsAdded).To(Equal(int64(2)))
			Expect(summary.Results[0].Relocation.Attempted()).To(BeFalse())
		})
	})

	Context("when some files fail to move", func() {
		It("counts the failures without failing the task", func() {
			runner = newRunner(newEntry("t1"))
			names := partitionFiles("t1/2021-04/", 2)
			gomock.InOrder(
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(0), nil),
				wh.EXPECT().RunQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(loader.QueryStats{}, nil),
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(1), nil),
			)
			store.EXPECT().List(gomock.Any(), "landing", "t1/2021-04/").Return(names, nil)
			store.EXPECT().Copy(gomock.Any(), "landing", names[1], "processed", names[1]).Return(errors.New("denied"))
			store.EXPECT().Copy(gomock.Any(), "landing", names[2], "processed", names[2]).Return(nil)
			store.EXPECT().Delete(gomock.Any(), "landing", names[2]).Return(nil)

			summary := runner.Run(ctx, []trigger.PartitionTask{{TableKey: "t1", Partition: "2021-04"}})

			Expect(summary.TasksSucceeded).To(Equal(1))
			Expect(summary.RelocationFailures).To(Equal(1))
			Expect(summary.Results[0].Relocation.Moved).To(Equal(1))
		})
	})

	Context("when the task names several source URIs", func() {
		It("loads them with one query and relocates the files of each", func() {
			runner = newRunner(newEntry("t1"))
			uris := []string{"gs://landing/t1/2021-04/*", "gs://landing/t1/2021-05/"}
			april := partitionFiles("t1/2021-04/", 2)
			var ref loader.ExternalReference
			gomock.InOrder(
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(0), nil),
				wh.EXPECT().RunQuery(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, _ string, r loader.ExternalReference) (loader.QueryStats, error) {
						ref = r
						return loader.QueryStats{}, nil
					}).Times(1),
				wh.EXPECT().RowCount(gomock.Any(), target("t1")).Return(int64(4), nil),
			)
			store.EXPECT().List(gomock.Any(), "landing", "t1/2021-04/").Return(april, nil)
			expectMoves("landing", april, "processed")
			store.EXPECT().List(gomock.Any(), "landing", "t1/2021-05/").Return(nil, errors.New("denied"))

			summary := runner.Run(ctx, []trigger.PartitionTask{{TableKey: "t1", SourceURIs: uris, Line: 1}})

			Expect(summary.TasksSucceeded).To(Equal(1))
			Expect(summary.TotalRowsAdded).To(Equal(int64(4)))
			Expect(ref.SourceURIs).To(Equal(uris))
			res := summary.Results[0]
			Expect(res.SourceURIs).To(Equal(uris))
			Expect(res.Relocation.Moved).To(Equal(2))
			Expect(res.Relocation.Source).To(Equal("gs://landing/t1/2021-04/*,gs://landing/t1/2021-05/"))
			Expect(summary.RelocationFailures).To(Equal(1))
		})
	})

	Context("when the dataset is not configured anywhere", func() {
		It("fails the task", func() {
			e := newEntry("t1")
			e.DataSet = ""
			e.ArchiveFiles = false
			runner = newRunner(e)

			summary := runner.Run(ctx, []trigger.PartitionTask{{TableKey: "t1", Partition: "2021-04"}})

			Expect(summary.TasksFailed).To(Equal(1))
			Expect(summary.Results[0].Err).To(MatchError(ContainSubstring("no dataset configured for t1")))
		})

		It("uses the default dataset when one is supplied", func() {
			e := newEntry("t1")
			e.DataSet = ""
			e.ArchiveFiles = false
			runner = newRunner(e)
			runner.DefaultDataSet = "fallback"
			tgt := loader.TableRef{ProjectID: "proj", Dataset: "fallback", Table: "t1"}
			gomock.InOrder(
				wh.EXPECT().RowCount(gomock.Any(), tgt).Return(int64(0), nil),
				wh.EXPECT().RunQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(loader.QueryStats{}, nil),
				wh.EXPECT().RowCount(gomock.Any(), tgt).Return(int64(1), nil),
			)

			summary := runner.Run(ctx, []trigger.PartitionTask{{TableKey: "t1", Partition: "2021-04"}})

			Expect(summary.TasksSucceeded).To(Equal(1))
		})
	})

	Context("when the context is cancelled", func() {
		It("fails the tasks that have not started", func() {
			runner = newRunner(newEntry("t1"))
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			summary := runner.Run(cancelled, []trigger.PartitionTask{{TableKey: "t1", Partition: "2021-04"}})

			Expect(summary.TasksFailed).To(Equal(1))
			Expect(errors.Is(summary.Results[0].Err, context.Canceled)).To(BeTrue())
		})
	})
})
