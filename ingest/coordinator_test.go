package ingest_test

import (
	"context"
	"errors"
	"time"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/hpingest/history"
	historymocks "github.com/relloyd/hpingest/history/mocks"
	"github.com/relloyd/hpingest/ingest"
	"github.com/relloyd/hpingest/ingest/mocks"
	"github.com/relloyd/hpingest/logger"
	"github.com/relloyd/hpingest/rdbms"
	tabledefinition "github.com/relloyd/hpingest/table-definition"
	"github.com/relloyd/hpingest/watermark"
)

// refreshingLister lists files after syncing its view of storage.
type refreshingLister struct {
	*mocks.MockObjectLister
	*mocks.MockRefresher
}

func issuesColumns() *tabledefinition.ColumnSchema {
	cols := tabledefinition.NewColumnSchema()
	cols.Set("ID", "NUMBER")
	cols.Set("NAME", "VARCHAR(255)")
	return cols
}

func objects(keys ...string) []watermark.Object {
	retval := make([]watermark.Object, 0, len(keys))
	for i, k := range keys {
		retval = append(retval, watermark.Object{Key: k, Size: int64(100 + i), LastModified: time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)})
	}
	return retval
}

var threeFiles = []string{
	"issues/data_1700000000_2.parquet",
	"issues/data_1700000000_1.parquet",
	"issues/data_1699999999_5.parquet",
}

var _ = Describe("Coordinator", func() {
	var (
		ctx     context.Context
		ctrl    *gomock.Controller
		catalog *mocks.MockSchemaDescriber
		hist    *historymocks.MockReader
		lister  *mocks.MockObjectLister
		cfg     ingest.Config
		log     logger.Logger
	)

	issues := ingest.TableConfig{Name: "ISSUES", Prefix: "issues/", KeyColumns: []string{"id"}, FileFormat: "parquet"}
	users := ingest.TableConfig{Name: "USERS", Prefix: "users/", KeyColumns: []string{"ID"}, FileFormat: "json"}

	BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(GinkgoT())
		catalog = mocks.NewMockSchemaDescriber(ctrl)
		hist = historymocks.NewMockReader(ctrl)
		lister = mocks.NewMockObjectLister(ctrl)
		log = logger.NewLogger("hpingest", "fatal", false)
		cfg = ingest.Config{
			Stage:      "@DB.RAW.S3_STAGE",
			TempSchema: "STAGING",
			Tables:     []ingest.TableConfig{issues},
		}
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	describeIssues := func() {
		catalog.EXPECT().Describe(gomock.Any(), []string{"ISSUES"}).
			Return(map[string]*tabledefinition.ColumnSchema{"ISSUES": issuesColumns()}, map[string]error{})
	}

	keysOf := func(files []watermark.FileDescriptor) []string {
		return watermark.Keys(files)
	}

	Context("with a persisted watermark", func() {
		It("selects files strictly after the boundary in ascending order", func() {
			describeIssues()
			hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(&watermark.Watermark{Timestamp: 1699999999, Index: 5}, nil)
			lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles...), nil)
			c := ingest.NewCoordinator(log, cfg, catalog, hist, lister)
			report, err := c.Plan(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.State).To(Equal(ingest.StateDone))
			Expect(c.State()).To(Equal(ingest.StateDone))
			Expect(report.BatchID).ToNot(BeEmpty())
			res, ok := report.Result("ISSUES")
			Expect(ok).To(BeTrue())
			Expect(res.Err).To(BeNil())
			Expect(keysOf(res.Files)).To(Equal([]string{
				"issues/data_1700000000_1.parquet",
				"issues/data_1700000000_2.parquet",
			}))
			Expect(res.Boundary).To(Equal(&watermark.Watermark{Timestamp: 1699999999, Index: 5}))
			Expect(res.HighWatermark).To(Equal(&watermark.Watermark{Timestamp: 1700000000, Index: 2}))
			Expect(res.TempTable).To(Equal("STAGING.TEMP_ISSUES"))
			Expect(res.CreateTempSql).To(Equal("CREATE or replace TRANSIENT TABLE STAGING.TEMP_ISSUES (ID NUMBER, NAME VARCHAR(255));"))
			Expect(res.CopyIntoSql).To(HaveLen(1))
			Expect(res.CopyIntoSql[0]).To(ContainSubstring("COPY INTO STAGING.TEMP_ISSUES FROM '@DB.RAW.S3_STAGE/issues/'"))
			Expect(res.CopyIntoSql[0]).To(ContainSubstring("FILES = ('data_1700000000_1.parquet', 'data_1700000000_2.parquet')"))
			Expect(res.CopyIntoSql[0]).To(ContainSubstring("TYPE = 'PARQUET'"))
			Expect(res.MergeSql).To(Equal("DELETE FROM ISSUES t USING STAGING.TEMP_ISSUES s WHERE t.ID = s.ID;\n" +
				"INSERT INTO ISSUES (ID,NAME) SELECT ID,NAME FROM STAGING.TEMP_ISSUES;"))
			Expect(report.Pending()).To(HaveLen(1))
		})

		It("excludes files with an equal timestamp and a lower or equal index", func() {
			describeIssues()
			hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(&watermark.Watermark{Timestamp: 1700000000, Index: 1}, nil)
			lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles...), nil)
			report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).Plan(ctx)
			Expect(err).ToNot(HaveOccurred())
			res, _ := report.Result("ISSUES")
			Expect(keysOf(res.Files)).To(Equal([]string{"issues/data_1700000000_2.parquet"}))
		})

		It("returns an empty result once the boundary reaches the newest file", func() {
			describeIssues()
			hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(&watermark.Watermark{Timestamp: 1700000000, Index: 2}, nil)
			lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles...), nil)
			report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).Plan(ctx)
			Expect(err).ToNot(HaveOccurred())
			res, _ := report.Result("ISSUES")
			Expect(res.Err).To(BeNil())
			Expect(res.Files).To(BeEmpty())
			Expect(res.HighWatermark).To(BeNil())
			Expect(res.MergeSql).To(BeEmpty())
			Expect(res.CopyIntoSql).To(BeEmpty())
			Expect(res.HasWork()).To(BeFalse())
			Expect(report.Pending()).To(BeEmpty())
			Expect(report.State).To(Equal(ingest.StateDone))
		})
	})

	Context("without a persisted watermark", func() {
		It("selects every file in ascending order", func() {
			describeIssues()
			hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
			lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles...), nil)
			report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).Plan(ctx)
			Expect(err).ToNot(HaveOccurred())
			res, _ := report.Result("ISSUES")
			Expect(res.Boundary).To(BeNil())
			Expect(keysOf(res.Files)).To(Equal([]string{
				"issues/data_1699999999_5.parquet",
				"issues/data_1700000000_1.parquet",
				"issues/data_1700000000_2.parquet",
			}))
		})

		It("treats an empty listing as no work", func() {
			describeIssues()
			hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
			lister.EXPECT().List(gomock.Any(), "issues/").Return(nil, nil)
			report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).Plan(ctx)
			Expect(err).ToNot(HaveOccurred())
			res, _ := report.Result("ISSUES")
			Expect(res.Err).To(BeNil())
			Expect(res.Files).To(BeEmpty())
		})
	})

	It("adds the file metadata columns to the staging table only", func() {
		cfg.IncludeMetadata = true
		describeIssues()
		hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
		lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles[0]), nil)
		report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).Plan(ctx)
		Expect(err).ToNot(HaveOccurred())
		res, _ := report.Result("ISSUES")
		Expect(res.CreateTempSql).To(Equal("CREATE or replace TRANSIENT TABLE STAGING.TEMP_ISSUES " +
			"(ID NUMBER, NAME VARCHAR(255), FILE_SOURCE VARCHAR(1024), FILE_ROW_NUMBER NUMBER(8,0));"))
		Expect(res.CopyIntoSql[0]).To(ContainSubstring("INCLUDE_METADATA = (FILE_SOURCE = METADATA$FILENAME, FILE_ROW_NUMBER = METADATA$FILE_ROW_NUMBER)"))
		Expect(res.MergeSql).ToNot(ContainSubstring("FILE_SOURCE"))
	})

	It("aborts the table batch when a file name has no watermark", func() {
		describeIssues()
		hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
		lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(append(threeFiles, "issues/data_latest.parquet")...), nil)
		report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).Plan(ctx)
		Expect(err).ToNot(HaveOccurred())
		res, _ := report.Result("ISSUES")
		var mke *watermark.MalformedKeyError
		Expect(errors.As(res.Err, &mke)).To(BeTrue())
		Expect(mke.Key).To(Equal("issues/data_latest.parquet"))
		Expect(res.Reason).To(ContainSubstring("data_latest.parquet"))
		Expect(res.Files).To(BeEmpty())
		Expect(res.MergeSql).To(BeEmpty())
		Expect(report.Failed()).To(HaveLen(1))
		Expect(report.Pending()).To(BeEmpty())
	})

	It("reports a merge key that is not a column of the table", func() {
		cfg.Tables = []ingest.TableConfig{{Name: "ISSUES", Prefix: "issues/", KeyColumns: []string{"ISSUE_KEY"}}}
		describeIssues()
		hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
		lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles...), nil)
		report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).Plan(ctx)
		Expect(err).ToNot(HaveOccurred())
		res, _ := report.Result("ISSUES")
		var pv *rdbms.PrecontractViolation
		Expect(errors.As(res.Err, &pv)).To(BeTrue())
		Expect(res.CreateTempSql).To(BeEmpty())
		Expect(res.Files).To(BeEmpty())
		Expect(res.HighWatermark).To(BeNil())
	})

	Context("with two tables", func() {
		BeforeEach(func() {
			cfg.Tables = []ingest.TableConfig{issues, users}
		})

		It("skips a table whose columns cannot be described and plans the rest", func() {
			catalog.EXPECT().Describe(gomock.Any(), []string{"ISSUES", "USERS"}).Return(
				map[string]*tabledefinition.ColumnSchema{"ISSUES": issuesColumns()},
				map[string]error{"USERS": &tabledefinition.CatalogLookupError{Table: "USERS", Err: errors.New("no column metadata found for table")}})
			hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
			lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles...), nil)
			report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).Plan(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Tables()).To(Equal([]string{"ISSUES"}))
			Expect(report.Skipped).To(HaveKey("USERS"))
			Expect(report.Skipped["USERS"]).To(ContainSubstring("no column metadata found"))
			Expect(report.Pending()).To(HaveLen(1))
		})

		It("fails the run when the watermark history cannot be read", func() {
			catalog.EXPECT().Describe(gomock.Any(), []string{"ISSUES", "USERS"}).Return(
				map[string]*tabledefinition.ColumnSchema{"ISSUES": issuesColumns(), "USERS": issuesColumns()}, map[string]error{})
			hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, errors.New("warehouse unavailable"))
			c := ingest.NewCoordinator(log, cfg, catalog, hist, lister)
			report, err := c.Plan(ctx)
			var hle *history.HistoryLookupError
			Expect(errors.As(err, &hle)).To(BeTrue())
			Expect(hle.Table).To(Equal("ISSUES"))
			Expect(report.State).To(Equal(ingest.StateFailed))
			Expect(c.State()).To(Equal(ingest.StateFailed))
			Expect(report.Tables()).To(Equal([]string{"ISSUES"}))
			Expect(report.Pending()).To(BeEmpty())
		})

		It("records a listing failure against its table and carries on", func() {
			catalog.EXPECT().Describe(gomock.Any(), []string{"ISSUES", "USERS"}).Return(
				map[string]*tabledefinition.ColumnSchema{"ISSUES": issuesColumns(), "USERS": issuesColumns()}, map[string]error{})
			hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
			hist.EXPECT().HighWatermark(gomock.Any(), "USERS").Return(nil, nil)
			lister.EXPECT().List(gomock.Any(), "issues/").Return(nil, errors.New("access denied"))
			lister.EXPECT().List(gomock.Any(), "users/").Return(objects("users/users_1700000000_0.json"), nil)
			report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).Plan(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Tables()).To(Equal([]string{"ISSUES", "USERS"}))
			Expect(report.Failed()).To(HaveLen(1))
			Expect(report.Failed()[0].Reason).To(Equal("access denied"))
			Expect(report.Pending()).To(HaveLen(1))
			Expect(report.Pending()[0].Table).To(Equal("USERS"))
		})

		It("plans only the named tables", func() {
			catalog.EXPECT().Describe(gomock.Any(), []string{"USERS"}).Return(
				map[string]*tabledefinition.ColumnSchema{"USERS": issuesColumns()}, map[string]error{})
			hist.EXPECT().HighWatermark(gomock.Any(), "USERS").Return(nil, nil)
			lister.EXPECT().List(gomock.Any(), "users/").Return(nil, nil)
			report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).PlanTables(ctx, []string{"USERS"})
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Tables()).To(Equal([]string{"USERS"}))
		})

		It("rejects a table that is not configured", func() {
			report, err := ingest.NewCoordinator(log, cfg, catalog, hist, lister).PlanTables(ctx, []string{"ORDERS"})
			Expect(report).To(BeNil())
			var ute *ingest.UnknownTableError
			Expect(errors.As(err, &ute)).To(BeTrue())
			Expect(ute.Table).To(Equal("ORDERS"))
		})
	})

	Context("with a lister that must be refreshed", func() {
		var refresher *mocks.MockRefresher

		BeforeEach(func() {
			refresher = mocks.NewMockRefresher(ctrl)
		})

		It("refreshes before listing", func() {
			describeIssues()
			refresh := refresher.EXPECT().Refresh(gomock.Any()).Return(nil)
			hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
			lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles...), nil).After(refresh)
			report, err := ingest.NewCoordinator(log, cfg, catalog, hist, refreshingLister{lister, refresher}).Plan(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Pending()).To(HaveLen(1))
		})

		It("fails the run when the refresh fails", func() {
			describeIssues()
			refresher.EXPECT().Refresh(gomock.Any()).Return(errors.New("stage does not exist"))
			report, err := ingest.NewCoordinator(log, cfg, catalog, hist, refreshingLister{lister, refresher}).Plan(ctx)
			Expect(err).To(MatchError("stage does not exist"))
			Expect(report.State).To(Equal(ingest.StateFailed))
			Expect(report.Results).To(BeEmpty())
		})
	})

	It("selects nothing when planned again from the new high watermark", func() {
		describeIssues()
		hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
		lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles...), nil).Times(2)
		c := ingest.NewCoordinator(log, cfg, catalog, hist, lister)
		first, err := c.Plan(ctx)
		Expect(err).ToNot(HaveOccurred())
		res, _ := first.Result("ISSUES")
		describeIssues()
		hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(res.HighWatermark, nil)
		second, err := c.Plan(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(second.BatchID).ToNot(Equal(first.BatchID))
		again, _ := second.Result("ISSUES")
		Expect(again.Files).To(BeEmpty())
	})
})

var _ = Describe("State", func() {
	It("marshals as its name", func() {
		b, err := ingest.StateEmitting.MarshalText()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("emitting"))
		Expect(ingest.State(42).String()).To(Equal("unknown"))
	})
})
