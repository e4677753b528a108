package rdbms

import (
	"fmt"
	"strings"

	"github.com/relloyd/hpingest/constants"
	"github.com/relloyd/hpingest/helper"
)

// MaxCopyIntoFiles is the most file names Snowflake accepts in one COPY INTO FILES list.
const MaxCopyIntoFiles = 1000

type CopyIntoConfig struct {
	TargetTable     SchemaTable // the staging table to copy into.
	StageName       string      // external stage, e.g. @DB.SCHEMA.S3_STAGE
	Path            string      // path below the stage holding the files, e.g. issues/
	Files           []string    // stage-relative file names in load order.
	FileFormat      string      // JSON or PARQUET
	IncludeMetadata bool        // add FILE_SOURCE and FILE_ROW_NUMBER columns.
}

// BuildCopyInto returns one COPY INTO statement per MaxCopyIntoFiles files, preserving file order.
// It returns nil if there are no files.
func BuildCopyInto(cfg CopyIntoConfig) []string {
	path := strings.TrimLeft(cfg.Path, "/")
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	location := "@" + strings.TrimPrefix(cfg.StageName, "@")
	if path != "" {
		location = location + "/" + path
	}
	format := strings.ToUpper(cfg.FileFormat)
	if format == "" {
		format = constants.FileFormatJson
	}
	formatOptions := fmt.Sprintf("TYPE = '%v'", format)
	if format == constants.FileFormatJson {
		formatOptions += ", REPLACE_INVALID_CHARACTERS = TRUE"
	}
	metadata := ""
	if cfg.IncludeMetadata {
		metadata = fmt.Sprintf("\nINCLUDE_METADATA = (%v = METADATA$FILENAME, %v = METADATA$FILE_ROW_NUMBER)",
			constants.FileSourceColumnName, constants.FileRowNumberColumnName)
	}
	var retval []string
	for start := 0; start < len(cfg.Files); start += MaxCopyIntoFiles {
		end := start + MaxCopyIntoFiles
		if end > len(cfg.Files) {
			end = len(cfg.Files)
		}
		files := make([]string, 0, end-start)
		for _, f := range cfg.Files[start:end] {
			files = append(files, helper.QuoteSqlString(strings.TrimPrefix(strings.TrimLeft(f, "/"), path)))
		}
		retval = append(retval, fmt.Sprintf("COPY INTO %v FROM '%v'\nFILE_FORMAT = (%v)\nFILES = (%v)\nMATCH_BY_COLUMN_NAME = CASE_INSENSITIVE%v\nON_ERROR = ABORT_STATEMENT;",
			cfg.TargetTable.String(), location, formatOptions, strings.Join(files, ", "), metadata))
	}
	return retval
}
