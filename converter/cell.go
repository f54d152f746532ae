package converter

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/series"
)

// NA is the cell text for SQL NULL. It is one of gota's default NaN markers.
const NA = "NA"

// ToCell renders a scanned driver value as data frame cell text.
func ToCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return NA
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case time.Time:
		return FormatTime(val)
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return NA
		}
		return ToCell(inner)
	default:
		return fmt.Sprint(val)
	}
}

// SeriesType picks the gota column type from the driver's scan type. ok is
// false when the driver does not commit to a type, leaving detection to gota.
func SeriesType(ct *sql.ColumnType) (series.Type, bool) {
	if ct == nil || ct.ScanType() == nil {
		return series.String, false
	}

	switch ct.ScanType().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return series.Int, true
	case reflect.Float32, reflect.Float64:
		return series.Float, true
	case reflect.Bool:
		return series.Bool, true
	case reflect.String:
		return series.String, true
	}

	switch strings.TrimPrefix(ct.ScanType().String(), "sql.") {
	case "NullInt64", "NullInt32", "NullInt16", "NullByte":
		return series.Int, true
	case "NullFloat64":
		return series.Float, true
	case "NullBool":
		return series.Bool, true
	case "NullString":
		return series.String, true
	}
	return series.String, false
}

// ParseValue turns a command-line parameter into the most specific Go value:
// int64, float64, bool, time.Time, or the string itself. "NA" and "null"
// become nil. Digits with a leading zero, like zip codes, stay strings.
func ParseValue(s string) interface{} {
	switch strings.ToLower(s) {
	case "na", "null":
		return nil
	case "true", "false":
		b, _ := strconv.ParseBool(s)
		return b
	}
	if !hasLeadingZero(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if t, err := ParseTime(s); err == nil {
		return t
	}
	return s
}

// hasLeadingZero reports "0" followed by another digit, after an optional sign.
func hasLeadingZero(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9'
}
