package logger_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/hpingest/logger"
)

var _ = Describe("Logger", func() {
	var logOutput *bytes.Buffer
	var l *logger.LoggerImpl

	read := func() map[string]interface{} {
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())
		return actual
	}

	BeforeEach(func() {
		l = logger.NewLogger("test-service", "debug", true)
		logOutput = bytes.NewBufferString("")
		l.SetOutput(logOutput)
	})

	It("Should have `test-service` as service name", func() {
		l.Info("Testing")
		Expect(read()["service"]).To(Equal("test-service"))
	})

	It("Should have info as log level", func() {
		l.Info("Testing")
		Expect(read()["level"]).To(Equal("info"))
	})

	It("Should have warn as log level", func() {
		l.Warn("Testing")
		Expect(read()["level"]).To(Equal("warning"))
	})

	It("Should have error as log level with a stack trace", func() {
		l.Error("Testing")
		actual := read()
		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).ToNot(BeNil())
	})

	It("Should have `Testing` as msg", func() {
		l.Info("Test", "ing")
		Expect(read()["msg"]).To(Equal("Testing"))
	})

	It("Should add fields to child loggers only", func() {
		l.WithField("table", "ISSUES").Info("Testing")
		Expect(read()["table"]).To(Equal("ISSUES"))
		logOutput.Reset()
		l.Info("Testing")
		Expect(read()).ToNot(HaveKey("table"))
	})

	It("Should not write debug when the level is info", func() {
		quiet := logger.NewLogger("test-service", "info", false)
		quiet.SetOutput(logOutput)
		quiet.Debug("hidden")
		Expect(logOutput.Len()).To(Equal(0))
	})

	It("Should fall back to info for an unknown level", func() {
		x := logger.NewLogger("test-service", "chatty", false)
		Expect(x.LogLevelStr).To(Equal("info"))
	})
})
