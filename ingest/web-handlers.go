package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/relloyd/hpingest/logger"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseReport struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message,omitempty"`
	Report  *Report           `json:"report,omitempty"`
}

type ResponseTable struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message,omitempty"`
	Skipped string            `json:"skipped,omitempty"`
	Table   *TableResult      `json:"table,omitempty"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

// GetHandlerPlan responds with the plan of every table without loading anything.
func GetHandlerPlan(log logger.Logger, newRunner RunnerFactory) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		runner, closer, err := newRunner(r.Context())
		if err != nil {
			logAndRespond(log, err, w, http.StatusServiceUnavailable, ResponseReport{Status: Error, Message: err.Error()})
			return
		}
		defer closer()
		report, err := runner.Coordinator.Plan(r.Context())
		if err != nil {
			logAndRespond(log, err, w, http.StatusInternalServerError, ResponseReport{Status: Error, Message: err.Error(), Report: report})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseReport{Status: Okay, Report: report})
	}
}

// GetHandlerPlanTable responds with the plan of the table named in the URL.
func GetHandlerPlanTable(log logger.Logger, newRunner RunnerFactory) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		table := mux.Vars(r)["table"]
		runner, closer, err := newRunner(r.Context())
		if err != nil {
			logAndRespond(log, err, w, http.StatusServiceUnavailable, ResponseTable{Status: Error, Message: err.Error()})
			return
		}
		defer closer()
		report, err := runner.Coordinator.PlanTables(r.Context(), []string{table})
		var ute *UnknownTableError
		if errors.As(err, &ute) {
			log.Info("HTTP request to plan table ", table, " that isn't configured.")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			respond(log, w, ResponseTable{Status: Error, Message: err.Error()})
			return
		} else if err != nil {
			logAndRespond(log, err, w, http.StatusInternalServerError, ResponseTable{Status: Error, Message: err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		res, _ := report.Result(table)
		respond(log, w, ResponseTable{Status: Okay, Table: res, Skipped: report.Skipped[table]})
	}
}

// GetHandlerRun plans and loads a batch. Only one batch runs at a time.
// The batch context is cancelled after timeout unless timeout is 0.
func GetHandlerRun(log logger.Logger, newRunner RunnerFactory, timeout time.Duration) func(w http.ResponseWriter, r *http.Request) {
	var running int32
	return func(w http.ResponseWriter, r *http.Request) {
		if !atomic.CompareAndSwapInt32(&running, 0, 1) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			respond(log, w, ResponseReport{Status: Error, Message: "a batch is already running"})
			return
		}
		defer atomic.StoreInt32(&running, 0)
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		runner, closer, err := newRunner(ctx)
		if err != nil {
			logAndRespond(log, err, w, http.StatusServiceUnavailable, ResponseReport{Status: Error, Message: err.Error()})
			return
		}
		defer closer()
		report, err := runner.Run(ctx)
		if err != nil {
			logAndRespond(log, err, w, http.StatusInternalServerError, ResponseReport{Status: Error, Message: err.Error(), Report: report})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseReport{Status: Okay, Report: report})
	}
}

// logAndRespond will log the error, write the status code and r to w.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter, code int, r interface{}) {
	log.Error(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	respond(log, w, r)
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Error(err)
		return
	}
	if _, err = fmt.Fprint(w, string(j)); err != nil {
		log.Error(err)
	}
}
