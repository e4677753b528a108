package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/mitchellh/mapstructure"
	"github.com/relloyd/hpingest/aws/s3"
	"github.com/relloyd/hpingest/constants"
	"github.com/relloyd/hpingest/helper"
	yaml2 "gopkg.in/yaml.v2"
)

// Table is one target table and the location of its files below the stage.
type Table struct {
	Name       string   `mapstructure:"name" yaml:"name" errorTxt:"table name" mandatory:"yes"`
	Prefix     string   `mapstructure:"prefix" yaml:"prefix,omitempty"`
	KeyColumns []string `mapstructure:"key_columns" yaml:"key_columns" errorTxt:"table key columns" mandatory:"yes"`
	FileFormat string   `mapstructure:"file_format" yaml:"file_format,omitempty"`
}

// GetPrefix returns the path of the table's files, which defaults to <table>/.
func (t Table) GetPrefix() string {
	p := t.Prefix
	if p == "" {
		p = t.Name
		if i := strings.LastIndex(p, "."); i >= 0 {
			p = p[i+1:]
		}
	}
	return strings.TrimRight(strings.TrimLeft(p, "/"), "/") + "/"
}

// Pipeline holds the parameters of one environment.
type Pipeline struct {
	Stage           string  `mapstructure:"stage" yaml:"stage" errorTxt:"external stage name" mandatory:"yes"`
	TempSchema      string  `mapstructure:"temp_schema" yaml:"temp_schema"`
	TargetSchema    string  `mapstructure:"target_schema" yaml:"target_schema"`
	HistoryTable    string  `mapstructure:"history_table" yaml:"history_table" errorTxt:"history table" mandatory:"yes"`
	Lister          string  `mapstructure:"lister" yaml:"lister"`
	Bucket          string  `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Region          string  `mapstructure:"region" yaml:"region,omitempty"`
	FileFormat      string  `mapstructure:"file_format" yaml:"file_format"`
	IncludeMetadata bool    `mapstructure:"include_metadata" yaml:"include_metadata"`
	Connection      string  `mapstructure:"connection" yaml:"connection,omitempty"`
	SnowflakeDsn    string  `mapstructure:"snowflake_dsn" yaml:"snowflake_dsn,omitempty"`
	Tables          []Table `mapstructure:"tables" yaml:"tables" errorTxt:"list of tables" mandatory:"yes"`
}

// TargetTable returns the fully qualified target of t.
// Names that already contain a schema are used as they are.
func (p *Pipeline) TargetTable(t Table) string {
	if p.TargetSchema == "" || strings.Contains(t.Name, ".") {
		return t.Name
	}
	return strings.TrimRight(p.TargetSchema, ".") + "." + t.Name
}

// FileFormatOf returns the file format of t, falling back to the pipeline default.
func (p *Pipeline) FileFormatOf(t Table) string {
	if t.FileFormat != "" {
		return strings.ToUpper(t.FileFormat)
	}
	return strings.ToUpper(p.FileFormat)
}

// GetBucket returns the S3 bucket to list when the s3 lister is configured.
func (p *Pipeline) GetBucket() (s3.AwsS3Bucket, error) {
	return s3.ParseDSN(p.Bucket, p.Region)
}

// DsnGetter looks up the DSN of a saved Snowflake connection.
type DsnGetter interface {
	GetSnowflakeDsn(name string) (string, error)
}

// ResolveSnowflakeDsn returns the DSN given directly or by the environment, else the
// DSN of the named connection saved in connections.
func (p *Pipeline) ResolveSnowflakeDsn(connections DsnGetter) (string, error) {
	if p.SnowflakeDsn != "" {
		return p.SnowflakeDsn, nil
	}
	if p.Connection == "" {
		return "", fmt.Errorf("please supply a Snowflake DSN using %v or a connection name", constants.EnvVarSnowflakeDsn)
	}
	if connections == nil {
		return "", fmt.Errorf("no connections file available to look up connection %q", p.Connection)
	}
	return connections.GetSnowflakeDsn(p.Connection)
}

func (p *Pipeline) setDefaults() {
	if p.Lister == "" {
		p.Lister = constants.ListerTypeStage
	}
	p.Lister = strings.ToLower(p.Lister)
	if p.FileFormat == "" {
		p.FileFormat = constants.FileFormatJson
	}
	p.FileFormat = strings.ToUpper(p.FileFormat)
	if !strings.HasPrefix(p.Stage, "@") && p.Stage != "" {
		p.Stage = "@" + p.Stage
	}
}

// applyEnvOverrides lets 12-factor deployments supply secrets without a config file entry.
func (p *Pipeline) applyEnvOverrides() {
	p.SnowflakeDsn = helper.ReadValueFromEnvWithDefault(constants.EnvVarSnowflakeDsn, p.SnowflakeDsn)
}

// Validate checks mandatory fields and the supported values of enumerations.
func (p *Pipeline) Validate() error {
	if err := helper.ValidateStructIsPopulated(p); err != nil {
		return err
	}
	switch p.Lister {
	case constants.ListerTypeStage:
	case constants.ListerTypeS3:
		if _, err := p.GetBucket(); err != nil {
			return fmt.Errorf("invalid bucket for lister %q: %v", p.Lister, err)
		}
	default:
		return fmt.Errorf("unsupported lister %q: expected %v or %v", p.Lister, constants.ListerTypeStage, constants.ListerTypeS3)
	}
	seen := make(map[string]bool)
	for _, t := range p.Tables {
		switch p.FileFormatOf(t) {
		case constants.FileFormatJson, constants.FileFormatParquet:
		default:
			return fmt.Errorf("unsupported file format %q for table %v", p.FileFormatOf(t), t.Name)
		}
		target := strings.ToUpper(p.TargetTable(t))
		if seen[target] {
			return fmt.Errorf("table %v is configured more than once", t.Name)
		}
		seen[target] = true
	}
	return nil
}

// LoadPipeline reads the parameters of environment env from a JSON or YAML file.
// The file holds one document per environment name at its top level.
func LoadPipeline(fileName string, env string) (*Pipeline, error) {
	b, err := ioutil.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, FileNotFoundError{fileName}
		}
		return nil, fmt.Errorf("error reading pipeline file %v: %v", fileName, err)
	}
	return ParsePipeline(b, fileName, env)
}

// ParsePipeline decodes the parameters of environment env from JSON or YAML in b.
// fileName is used in errors only.
func ParsePipeline(b []byte, fileName string, env string) (*Pipeline, error) {
	j, err := yaml.YAMLToJSON(b) // YAML is a superset of JSON.
	if err != nil {
		return nil, fmt.Errorf("error parsing pipeline file %v: %v", fileName, err)
	}
	environments := make(map[string]interface{})
	if err = json.Unmarshal(j, &environments); err != nil {
		return nil, fmt.Errorf("error parsing pipeline file %v: %v", fileName, err)
	}
	raw, ok := environments[env]
	if !ok {
		return nil, KeyNotFoundError{configFile: fileName, key: env, err: fmt.Errorf("missing pipeline parameters for environment")}
	}
	p := &Pipeline{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err = dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("error decoding environment %q in pipeline file %v: %v", env, fileName, err)
	}
	p.setDefaults()
	p.applyEnvOverrides()
	if err = p.Validate(); err != nil {
		return nil, fmt.Errorf("environment %q in pipeline file %v: %v", env, fileName, err)
	}
	return p, nil
}

// SamplePipeline returns the parameters written by WriteSample.
func SamplePipeline() Pipeline {
	return Pipeline{
		Stage:           "@RAW.PUBLIC.S3_STAGE",
		TempSchema:      "RAW.STAGING",
		TargetSchema:    "RAW.PUBLIC",
		HistoryTable:    "RAW.AUDIT.LOAD_HISTORY",
		Lister:          constants.ListerTypeStage,
		FileFormat:      constants.FileFormatJson,
		IncludeMetadata: true,
		Connection:      constants.ConnectionTypeSnowflake,
		Tables: []Table{
			{Name: "ISSUES", Prefix: "issues/", KeyColumns: []string{"ID"}},
			{Name: "GOALS", Prefix: "goals/", KeyColumns: []string{"ID"}, FileFormat: constants.FileFormatParquet},
		},
	}
}

// WriteSample writes a starter pipeline file for environment env.
// An existing file is not overwritten.
func WriteSample(fileName string, env string) error {
	if fileExists(fileName) {
		return fmt.Errorf("pipeline file %v already exists", fileName)
	}
	b, err := yaml2.Marshal(map[string]Pipeline{env: SamplePipeline()})
	if err != nil {
		return fmt.Errorf("error marshalling sample pipeline: %v", err)
	}
	if err = makeDir(path.Dir(fileName)); err != nil {
		return err
	}
	return ioutil.WriteFile(fileName, b, 0644)
}
