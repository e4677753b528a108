package ingest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	historymocks "github.com/relloyd/hpingest/history/mocks"
	"github.com/relloyd/hpingest/ingest"
	"github.com/relloyd/hpingest/ingest/mocks"
	"github.com/relloyd/hpingest/logger"
	tabledefinition "github.com/relloyd/hpingest/table-definition"
)

var _ = Describe("Web handlers", func() {
	var (
		ctrl     *gomock.Controller
		catalog  *mocks.MockSchemaDescriber
		hist     *historymocks.MockReader
		lister   *mocks.MockObjectLister
		executor *mocks.MockExecutor
		router   *mux.Router
		closed   int
		factErr  error
	)

	serve := func(method string, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		body := make(map[string]interface{})
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		return w, body
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		catalog = mocks.NewMockSchemaDescriber(ctrl)
		hist = historymocks.NewMockReader(ctrl)
		lister = mocks.NewMockObjectLister(ctrl)
		executor = mocks.NewMockExecutor(ctrl)
		closed = 0
		factErr = nil
		log := logger.NewLogger("hpingest", "fatal", false)
		cfg := ingest.Config{Stage: "@STAGE", Tables: []ingest.TableConfig{{Name: "ISSUES", Prefix: "issues/", KeyColumns: []string{"ID"}}}}
		factory := func(ctx context.Context) (*ingest.Runner, func(), error) {
			if factErr != nil {
				return nil, nil, factErr
			}
			c := ingest.NewCoordinator(log, cfg, catalog, hist, lister)
			return &ingest.Runner{Coordinator: c, Executor: executor}, func() { closed++ }, nil
		}
		router = ingest.NewRouter(log, factory, 5*time.Minute)
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	expectPlan := func() {
		catalog.EXPECT().Describe(gomock.Any(), []string{"ISSUES"}).
			Return(map[string]*tabledefinition.ColumnSchema{"ISSUES": issuesColumns()}, map[string]error{})
		hist.EXPECT().HighWatermark(gomock.Any(), "ISSUES").Return(nil, nil)
		lister.EXPECT().List(gomock.Any(), "issues/").Return(objects(threeFiles...), nil)
	}

	It("reports healthy", func() {
		w, body := serve(http.MethodGet, "/health")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(body["status"]).To(Equal("ok"))
	})

	It("responds with the plan of every table", func() {
		expectPlan()
		w, body := serve(http.MethodGet, "/plan")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
		Expect(body["status"]).To(Equal("ok"))
		report := body["report"].(map[string]interface{})
		Expect(report["state"]).To(Equal("done"))
		tables := report["tables"].([]interface{})
		Expect(tables).To(HaveLen(1))
		table := tables[0].(map[string]interface{})
		Expect(table["table"]).To(Equal("ISSUES"))
		Expect(table["files"]).To(HaveLen(3))
		Expect(table["mergeSql"]).To(ContainSubstring("DELETE FROM ISSUES t"))
		Expect(closed).To(Equal(1))
	})

	It("responds with the plan of one table", func() {
		expectPlan()
		w, body := serve(http.MethodGet, "/plan/ISSUES")
		Expect(w.Code).To(Equal(http.StatusOK))
		table := body["table"].(map[string]interface{})
		Expect(table["highWatermark"]).To(Equal(map[string]interface{}{"timestamp": float64(1700000000), "index": float64(2)}))
	})

	It("responds not found for a table that is not configured", func() {
		w, body := serve(http.MethodGet, "/plan/ORDERS")
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(body["status"]).To(Equal("error"))
		Expect(body["message"]).To(Equal("table ORDERS is not configured"))
	})

	It("plans and loads on POST /run", func() {
		expectPlan()
		executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil)
		w, body := serve(http.MethodPost, "/run")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(body["status"]).To(Equal("ok"))
		Expect(closed).To(Equal(1))
	})

	It("returns the report with the error when loading fails", func() {
		expectPlan()
		executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(errors.New("failed to load 1 tables"))
		w, body := serve(http.MethodPost, "/run")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(body["message"]).To(Equal("failed to load 1 tables"))
		Expect(body["report"]).ToNot(BeNil())
	})

	It("cancels the run after the run timeout", func() {
		expectPlan()
		executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, report *ingest.Report) error {
			deadline, ok := ctx.Deadline()
			Expect(ok).To(BeTrue())
			Expect(deadline).To(BeTemporally("~", time.Now().Add(5*time.Minute), time.Minute))
			return nil
		})
		w, _ := serve(http.MethodPost, "/run")
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("returns the error of a run that outlives its timeout", func() {
		log := logger.NewLogger("hpingest", "fatal", false)
		cfg := ingest.Config{Stage: "@STAGE", Tables: []ingest.TableConfig{{Name: "ISSUES", Prefix: "issues/", KeyColumns: []string{"ID"}}}}
		factory := func(ctx context.Context) (*ingest.Runner, func(), error) {
			c := ingest.NewCoordinator(log, cfg, catalog, hist, lister)
			return &ingest.Runner{Coordinator: c, Executor: executor}, func() { closed++ }, nil
		}
		router = ingest.NewRouter(log, factory, 50*time.Millisecond)
		expectPlan()
		executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, report *ingest.Report) error {
			<-ctx.Done()
			return ctx.Err()
		})
		w, body := serve(http.MethodPost, "/run")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(body["message"]).To(Equal(context.DeadlineExceeded.Error()))
		Expect(closed).To(Equal(1))
	})

	It("returns service unavailable when no session can be opened", func() {
		factErr = errors.New("connection refused")
		w, body := serve(http.MethodPost, "/run")
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(body["message"]).To(Equal("connection refused"))
	})

	It("only accepts POST on /run", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/run", nil))
		Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
	})
})
