package loader_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/relloyd/bqload/loader"
	"github.com/relloyd/bqload/loader/mocks"
	"github.com/relloyd/bqload/logger"
)

var target = loader.TableRef{ProjectID: "p", Dataset: "ds", Table: "t1"}

func newRef(t *testing.T) loader.ExternalReference {
	ref, err := loader.NewExternalReferenceWithAlias("ext_test", []string{"gs://b/t1/2021-04/*"}, loader.FormatORC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ref
}

func TestExecuteSucceeded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()
	ref := newRef(t)
	w := mocks.NewMockWarehouse(ctrl)
	gomock.InOrder(
		w.EXPECT().RowCount(ctx, target).Return(int64(100), nil),
		w.EXPECT().RunQuery(ctx, "q", ref).Return(loader.QueryStats{JobID: "j1", DMLAffectedRows: 10}, nil),
		w.EXPECT().RowCount(ctx, target).Return(int64(110), nil),
	)
	e := loader.NewExecutor(w, logger.NewLogger("bqload", "error", true))
	res := e.Execute(ctx, "q", ref, target)
	if !res.Succeeded() {
		t.Fatalf("expected success; got %v: %v", res.Status, res.Err)
	}
	if res.RowsBefore != 100 || res.RowsAfter != 110 || res.RowsAdded != 10 {
		t.Fatalf("unexpected row counts: %+v", res)
	}
	if res.DMLAffectedRows != 10 {
		t.Fatalf("expected 10 affected rows; got %v", res.DMLAffectedRows)
	}
	if len(res.SourceURIs) != 1 || res.SourceURIs[0] != "gs://b/t1/2021-04/*" {
		t.Fatalf("unexpected source URIs %v", res.SourceURIs)
	}
}

func TestExecuteQueryFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()
	ref := newRef(t)
	w := mocks.NewMockWarehouse(ctrl)
	w.EXPECT().RowCount(ctx, target).Return(int64(100), nil).Times(1)
	w.EXPECT().RunQuery(ctx, "bad sql", ref).Return(loader.QueryStats{}, errors.New("syntax error"))
	e := loader.NewExecutor(w, logger.NewLogger("bqload", "error", true))
	res := e.Execute(ctx, "bad sql", ref, target)
	if res.Succeeded() {
		t.Fatal("expected failure")
	}
	if res.Err == nil || res.RowsAdded != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExecuteTargetTableMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()
	w := mocks.NewMockWarehouse(ctrl)
	w.EXPECT().RowCount(ctx, target).Return(int64(0), loader.ErrTargetTableNotFound)
	e := loader.NewExecutor(w, logger.NewLogger("bqload", "error", true))
	res := e.Execute(ctx, "q", newRef(t), target)
	if res.Succeeded() {
		t.Fatal("expected failure")
	}
	if !errors.Is(res.Err, loader.ErrTargetTableNotFound) {
		t.Fatalf("expected ErrTargetTableNotFound; got %v", res.Err)
	}
}
