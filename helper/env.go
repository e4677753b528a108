package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/hpingest/constants"
)

// ReadValueFromEnvWithDefault will read the value of name from the environment.
// If it's not set then it will return the supplied defaultValue.
func ReadValueFromEnvWithDefault(name string, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvVarName converts name into an environment variable using EnvVarPrefix and the name converted to upper
// with dashes converted to underscores all separated by underscores.
func GetEnvVarName(name string) string {
	n := strings.Replace(strings.TrimSpace(strings.ToUpper(name)), "-", "_", -1)
	return fmt.Sprintf("%v_%v", constants.EnvVarPrefix, n)
}
