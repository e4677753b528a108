package ingest_test

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/hpingest/history"
	historymocks "github.com/relloyd/hpingest/history/mocks"
	"github.com/relloyd/hpingest/ingest"
	"github.com/relloyd/hpingest/ingest/mocks"
	"github.com/relloyd/hpingest/logger"
	"github.com/relloyd/hpingest/rdbms/shared"
	tabledefinition "github.com/relloyd/hpingest/table-definition"
	"github.com/relloyd/hpingest/watermark"
)

func plannedTable(table string, keys ...string) *ingest.TableResult {
	files := make([]watermark.FileDescriptor, 0, len(keys))
	for _, k := range keys {
		fd, err := watermark.NewFileDescriptor(watermark.Object{Key: k, Size: 10, LastModified: time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)})
		Expect(err).ToNot(HaveOccurred())
		files = append(files, fd)
	}
	hw, _ := watermark.MaxWatermark(files)
	temp := "STAGING.TEMP_" + table
	return &ingest.TableResult{
		Table:         table,
		TargetTable:   table,
		TempTable:     temp,
		Files:         files,
		HighWatermark: &hw,
		CreateTempSql: "CREATE or replace TRANSIENT TABLE " + temp + " (ID NUMBER);",
		CopyIntoSql:   []string{"COPY INTO " + temp + " FROM '@STAGE/" + strings.ToLower(table) + "/'"},
		MergeSql:      "DELETE FROM " + table + " t USING " + temp + " s WHERE t.ID = s.ID;\nINSERT INTO " + table + " (ID) SELECT ID FROM " + temp + ";",
	}
}

func indexOf(stmts []string, prefix string) int {
	for i, s := range stmts {
		if strings.HasPrefix(s, prefix) {
			return i
		}
	}
	return -1
}

var _ = Describe("SnowflakeExecutor", func() {
	var (
		ctx    context.Context
		conn   *shared.MockConnection
		exec   *ingest.SnowflakeExecutor
		report *ingest.Report
		log    logger.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		log = logger.NewLogger("hpingest", "fatal", false)
		conn = shared.NewMockConnection("snowflake")
		exec = ingest.NewSnowflakeExecutor(log, conn, history.NewSnowflakeHistory(log, conn, "META.INGEST_HISTORY"))
		report = ingest.NewReport("batch1")
	})

	It("creates the staging table before loading and recording each table in one transaction", func() {
		report.Results = append(report.Results,
			plannedTable("ISSUES", "issues/data_1700000000_1.parquet", "issues/data_1700000000_2.parquet"))
		Expect(exec.Execute(ctx, report)).To(Succeed())
		stmts := conn.Statements()
		Expect(stmts).To(HaveLen(4))
		Expect(stmts[0]).To(HavePrefix("CREATE or replace TRANSIENT TABLE STAGING.TEMP_ISSUES"))
		Expect(stmts[1]).To(HavePrefix("COPY INTO STAGING.TEMP_ISSUES"))
		Expect(stmts[2]).To(HavePrefix("DELETE FROM ISSUES t"))
		Expect(stmts[3]).To(HavePrefix("INSERT INTO META.INGEST_HISTORY"))
		args := conn.Args()[3]
		Expect(args).To(HaveLen(14))
		Expect(args[0]).To(Equal("ISSUES"))
		Expect(args[1]).To(Equal("issues/data_1700000000_1.parquet"))
		Expect(args[6]).To(Equal("batch1"))
		Expect(args[8]).To(Equal("issues/data_1700000000_2.parquet"))
		Expect(conn.Commits()).To(Equal(1))
		Expect(conn.Rollbacks()).To(BeZero())
		Expect(report.Results[0].Loaded).To(BeTrue())
		Expect(report.Pending()).To(BeEmpty())
	})

	It("rolls back a failed table and still loads the others", func() {
		report.Results = append(report.Results,
			plannedTable("ISSUES", "issues/data_1700000000_1.parquet"),
			plannedTable("USERS", "users/users_1700000000_1.json"))
		conn.FailOn["DELETE FROM ISSUES"] = errors.New("merge failed")
		err := exec.Execute(ctx, report)
		var ee *ingest.ExecuteError
		Expect(errors.As(err, &ee)).To(BeTrue())
		Expect(ee.Tables).To(Equal([]string{"ISSUES"}))
		Expect(ee.Errors["ISSUES"]).To(MatchError(ContainSubstring("merge failed")))
		Expect(err.Error()).To(ContainSubstring("failed to load 1 tables"))
		Expect(conn.Rollbacks()).To(Equal(1))
		Expect(conn.Commits()).To(Equal(1))
		issues, _ := report.Result("ISSUES")
		Expect(issues.Loaded).To(BeFalse())
		Expect(issues.Reason).To(ContainSubstring("merge failed"))
		users, _ := report.Result("USERS")
		Expect(users.Loaded).To(BeTrue())
		stmts := conn.Statements()
		Expect(indexOf(stmts, "INSERT INTO META.INGEST_HISTORY")).To(BeNumerically(">", indexOf(stmts, "DELETE FROM USERS")))
	})

	It("does not start the transaction when the staging table cannot be created", func() {
		report.Results = append(report.Results, plannedTable("ISSUES", "issues/data_1700000000_1.parquet"))
		conn.FailOn["CREATE or replace"] = errors.New("insufficient privileges")
		err := exec.Execute(ctx, report)
		Expect(err).To(MatchError(ContainSubstring("unable to create staging table STAGING.TEMP_ISSUES")))
		Expect(conn.Statements()).To(HaveLen(1))
		Expect(conn.Commits()).To(BeZero())
		Expect(conn.Rollbacks()).To(BeZero())
	})

	It("rolls back the load when the history cannot be recorded", func() {
		report.Results = append(report.Results, plannedTable("ISSUES", "issues/data_1700000000_1.parquet"))
		conn.FailOn["INSERT INTO META.INGEST_HISTORY"] = errors.New("table does not exist")
		err := exec.Execute(ctx, report)
		Expect(err).To(MatchError(ContainSubstring("unable to record processed files for table ISSUES")))
		Expect(conn.Commits()).To(BeZero())
		Expect(conn.Rollbacks()).To(Equal(1))
	})

	It("skips tables without work", func() {
		report.Results = append(report.Results, &ingest.TableResult{Table: "ISSUES"})
		Expect(exec.Execute(ctx, report)).To(Succeed())
		Expect(conn.Statements()).To(BeEmpty())
	})
})

var _ = Describe("Runner", func() {
	var (
		ctx      context.Context
		ctrl     *gomock.Controller
		catalog  *mocks.MockSchemaDescriber
		hist     *historymocks.MockReader
		lister   *mocks.MockObjectLister
		executor *mocks.MockExecutor
		runner   *ingest.Runner
	)

	BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(GinkgoT())
		catalog = mocks.NewMockSchemaDescriber(ctrl)
		hist = historymocks.NewMockReader(ctrl)
		lister = mocks.NewMockObjectLister(ctrl)
		executor = mocks.NewMockExecutor(ctrl)
		cfg := ingest.Config{Stage: "@STAGE", Tables: []ingest.TableConfig{{Name: "ISSUES", Prefix: "issues/", KeyColumns: []string{"ID"}}}}
		c := ingest.NewCoordinator(logger.NewLogger("hpingest", "fatal", false), cfg, catalog, hist, lister)
		runner = &ingest.Runner{Coordinator: c, Executor: executor}
		catalog.EXPECT().Describe(gomock.Any(), gomock.Any()).
			Return(map[string]*tabledefinition.ColumnSchema{"ISSUES": issuesColumns()}, map[string]error{})
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	It("executes the planned report", func() {
		hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
		lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles...), nil)
		executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *ingest.Report) error {
			Expect(r.Pending()).To(HaveLen(1))
			return nil
		})
		report, err := runner.Run(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Tables()).To(Equal([]string{"ISSUES"}))
	})

	It("does not execute when planning fails", func() {
		hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, errors.New("timeout"))
		report, err := runner.Run(ctx)
		Expect(err).To(HaveOccurred())
		Expect(report.State).To(Equal(ingest.StateFailed))
	})
})
