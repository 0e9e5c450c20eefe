package formats

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/fileformatter/internal/core"
)

var numericPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// inferCell types a textual value the way spreadsheet applications do on
// import: blank is Empty, TRUE/FALSE are booleans, plain decimal numbers are
// numbers and everything else stays a string.
func inferCell(s string) core.Cell {
	if s == "" {
		return core.Empty()
	}
	switch strings.ToUpper(s) {
	case "TRUE":
		return core.Bool(true)
	case "FALSE":
		return core.Bool(false)
	}
	if numericPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return core.Num(f)
		}
	}
	return core.Str(s)
}
