package constants

// Ingestion

const (
	TimeFormatYearSecondsTZ    = "20060102T150405-0700" // a format that includes the time zone and is compatible with Snowflake.
	TimeFormatYearSecondsRegex = "[0-9]{4}[0-9]{2}[0-9]{2}T[0-9]{6}[-+][0-9]{4}"
	TempTablePrefix            = "TEMP_"
	FileSourceColumnName       = "FILE_SOURCE"
	FileSourceColumnType       = "VARCHAR(1024)"
	FileRowNumberColumnName    = "FILE_ROW_NUMBER"
	FileRowNumberColumnType    = "NUMBER(8,0)"
	FileFormatJson             = "JSON"
	FileFormatParquet          = "PARQUET"
	ListerTypeStage            = "stage"
	ListerTypeS3               = "s3"
	DefaultEnvironment         = "dev"
	ServiceName                = "hpingest"
	EnvVarPrefix               = "HPI" // prefixed for environment variables in twelveFactorMode
	EnvVarTwelveFactorMode     = EnvVarPrefix + "_12FACTOR_MODE"
	EnvVarConfigFile           = EnvVarPrefix + "_CONFIG_FILE"
	EnvVarEnvironment          = EnvVarPrefix + "_ENVIRONMENT"
	EnvVarSnowflakeDsn         = EnvVarPrefix + "_SNOWFLAKE_DSN"
	EnvVarLogLevel             = EnvVarPrefix + "_LOG_LEVEL"
	EnvVarStackDump            = EnvVarPrefix + "_STACK_DUMP"
	ConnectionTypeSnowflake    = "snowflake"
	ConnectionTypeS3           = "s3"
	EmojiBang                  = "\U0001F4A5"
)
