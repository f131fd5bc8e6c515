package logger_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/bqload/logger"
)

var _ = Describe("Logger", func() {
	var (
		log       *logger.LoggerImpl
		logOutput *bytes.Buffer
	)

	readLine := func() map[string]interface{} {
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())
		return actual
	}

	BeforeEach(func() {
		log = logger.NewLogger("test-service", "debug", true)
		log.SetJSONFormat()
		logOutput = bytes.NewBufferString("")
		log.SetOutput(logOutput)
	})

	It("Should have `test-service` as service name", func() {
		log.Info("Testing")
		Expect(readLine()["service"]).To(Equal("test-service"))
	})

	It("Should have info as log level", func() {
		log.Info("Testing")
		Expect(readLine()["level"]).To(Equal("info"))
	})

	It("Should have warn as log level", func() {
		log.Warn("Testing")
		Expect(readLine()["level"]).To(Equal("warning"))
	})

	It("Should have error as log level with a stack trace", func() {
		log.Error("Testing")
		actual := readLine()
		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).ToNot(BeNil())
	})

	It("Should have `Testing` as msg", func() {
		log.Info("Testing")
		Expect(readLine()["msg"]).To(Equal("Testing"))
	})

	It("Should carry fields added by WithFields", func() {
		log.WithFields(logger.Fields{"tableKey": "t1", "rowsAdded": 10}).Info("loaded")
		actual := readLine()
		Expect(actual["tableKey"]).To(Equal("t1"))
		Expect(actual["rowsAdded"]).To(BeEquivalentTo(10))
		Expect(actual["service"]).To(Equal("test-service"))
	})
})
