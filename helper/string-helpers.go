package helper

import (
	"fmt"
	"regexp"
	"strings"
)

var reQuoted = regexp.MustCompile(`^"(.+)"$`)

// CsvToStringSliceTrimSpaces converts a string of the form, 'f1, f2,f3...' into a slice of string values.
// Empty tokens are dropped.
func CsvToStringSliceTrimSpaces(s string) []string {
	tokens := strings.Split(s, ",")
	retval := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			retval = append(retval, t)
		}
	}
	return retval
}

// ToUpperIfNotQuoted converts any non-quoted strings to upper case.
// A new slice is returned; s is not modified.
func ToUpperIfNotQuoted(s []string) []string {
	retval := make([]string, len(s))
	for idx, v := range s {
		if reQuoted.MatchString(v) { // if the column name is quoted...
			retval[idx] = v
		} else {
			retval[idx] = strings.ToUpper(v)
		}
	}
	return retval
}

// StringsToCsv joins the strings by ","
func StringsToCsv(s []string) string {
	return strings.Join(s, ",")
}

// StringSliceDiff returns the values in a that are not found in b, preserving the order of a.
func StringSliceDiff(a []string, b []string) []string {
	m := make(map[string]struct{}, len(b))
	for _, v := range b {
		m[v] = struct{}{}
	}
	retval := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := m[v]; !ok {
			retval = append(retval, v)
		}
	}
	return retval
}

// QuoteSqlString wraps s in single quotes, doubling any embedded single quotes.
func QuoteSqlString(s string) string {
	return "'" + strings.Replace(s, "'", "''", -1) + "'"
}

// Function to get a string "src.col1 = tgt.col1 AND src.col2 = tgt.col2" using the colList supplied
// and where the AND can be whatever separator you pass in.
func GenerateStringOfColsEqualsCols(colList []string, srcAlias string, tgtAlias string, separator string) string {
	return strings.Join(GenerateSliceOfColsEqualCols(colList, srcAlias, tgtAlias), separator)
}

func GenerateSliceOfColsEqualCols(colList []string, srcAlias string, tgtAlias string) []string {
	retval := make([]string, len(colList), len(colList))
	for idx, col := range colList {
		retval[idx] = fmt.Sprintf("%s.%s = %s.%s", srcAlias, col, tgtAlias, col)
	}
	return retval
}
