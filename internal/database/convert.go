package database

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// timeLayouts are tried in order when a date-time arrives as text
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, errors.Errorf("value %d overflows int64", x)
		}
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, errors.Errorf("value %v is not integral", x)
		}
		return int64(x), nil
	case float32:
		return asInt64(float64(x))
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return asInt64(string(x))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "cannot convert %q to int64", x)
		}
		return n, nil
	}
	return 0, errors.Errorf("cannot convert %T to int64", v)
}

func asFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case []byte:
		return asFloat64(string(x))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, errors.Wrapf(err, "cannot convert %q to float64", x)
		}
		return f, nil
	case time.Time:
		return 0, errors.New("cannot convert time.Time to float64")
	}
	n, err := asInt64(v)
	if err != nil {
		return 0, errors.Errorf("cannot convert %T to float64", v)
	}
	return float64(n), nil
}

// asBool accepts a native boolean or any number, nonzero being true
func asBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case float32:
		return x != 0, nil
	case []byte:
		return asBool(string(x))
	case string:
		s := strings.TrimSpace(x)
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false, errors.Errorf("cannot convert %q to bool", x)
		}
		return f != 0, nil
	case time.Time:
		return false, errors.New("cannot convert time.Time to bool")
	}
	n, err := asInt64(v)
	if err != nil {
		return false, errors.Errorf("cannot convert %T to bool", v)
	}
	return n != 0, nil
}

func asString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case time.Time:
		return x.Format("2006-01-02 15:04:05"), nil
	}
	if n, err := asInt64(v); err == nil {
		return strconv.FormatInt(n, 10), nil
	}
	return "", errors.Errorf("cannot convert %T to string", v)
}

func asTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case []byte:
		return asTime(string(x))
	case string:
		if t, ok := parseTime(x); ok {
			return t, nil
		}
		return time.Time{}, errors.Errorf("cannot parse %q as date-time", x)
	}
	return time.Time{}, errors.Errorf("cannot convert %T to time.Time", v)
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
