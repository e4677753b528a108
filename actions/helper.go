package actions

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ghodss/yaml"
	"github.com/relloyd/hpingest/ingest"
	"github.com/relloyd/hpingest/logger"
)

const (
	OutputJson = "json"
	OutputYaml = "yaml"
)

// WriteReport writes report to w as JSON or YAML.
func WriteReport(w io.Writer, report *ingest.Report, yamlOrJson string) error {
	var b []byte
	var err error
	switch yamlOrJson {
	case OutputJson:
		b, err = json.MarshalIndent(report, "", "  ")
	case OutputYaml:
		b, err = yaml.Marshal(report) // uses the json tags of the report.
	default:
		return fmt.Errorf("unsupported output format %q", yamlOrJson)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// getPrintLogFunc returns a func that prints to w when printOnly is set, else logs at info level.
func getPrintLogFunc(log logger.Logger, w io.Writer, printOnly bool) func(args ...interface{}) {
	if printOnly {
		return func(args ...interface{}) {
			_, _ = fmt.Fprintln(w, args...)
		}
	}
	return func(args ...interface{}) {
		log.Info(args...)
	}
}
