package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gestmed/internal/domain/entity"

	"github.com/gorilla/mux"
)

var errInvalidQuery = errors.New("invalid query parameter")

// Accepted layouts for date query parameters, most specific first.
var queryTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

const queryDateLayout = "2006-01-02"

func pathInt64(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidQuery
	}
	return id, nil
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, errInvalidQuery
	}
	return &n, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, errInvalidQuery
	}
	return &b, nil
}

// queryTime parses an RFC 3339 timestamp or a plain YYYY-MM-DD date in UTC.
// dateOnly reports the second form.
func queryTime(r *http.Request, name string) (t *time.Time, dateOnly bool, err error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return nil, false, nil
	}
	if d, err := time.ParseInLocation(queryDateLayout, value, time.UTC); err == nil {
		return &d, true, nil
	}
	for _, layout := range queryTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return &parsed, false, nil
		}
	}
	return nil, false, errInvalidQuery
}

// queryRangeEnd parses an inclusive range end. A plain date covers that whole day.
func queryRangeEnd(r *http.Request, name string) (*time.Time, error) {
	t, dateOnly, err := queryTime(r, name)
	if err != nil || t == nil || !dateOnly {
		return t, err
	}
	_, end := entity.DayBounds(*t)
	return &end, nil
}

// queryFirst returns the first non-empty value among names.
func queryFirst(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, name := range names {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			return v
		}
	}
	return ""
}
