package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// monthParams holds the requested reporting period.
type monthParams struct {
	Month int
	Year  int
}

// parseMonthParams reads month and year from the query string,
// defaulting to the current period. Out-of-range months are rejected
// rather than corrected.
func parseMonthParams(query url.Values, now time.Time) (monthParams, error) {
	params := monthParams{
		Month: int(now.Month()),
		Year:  now.Year(),
	}

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return monthParams{}, fmt.Errorf("month %q is not a number", v)
		}
		params.Month = m
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return monthParams{}, fmt.Errorf("year %q is not a number", v)
		}
		params.Year = y
	}

	if params.Month < 1 || params.Month > 12 {
		return monthParams{}, fmt.Errorf("month %d out of range", params.Month)
	}
	if params.Year < 1970 || params.Year > 9999 {
		return monthParams{}, fmt.Errorf("year %d out of range", params.Year)
	}

	return params, nil
}

// parseTopN reads the optional n parameter, falling back to def.
func parseTopN(query url.Values, def int) (int, error) {
	v := strings.TrimSpace(query.Get("n"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("n %q must be a positive number", v)
	}
	return n, nil
}

// bearerToken extracts the token from the Authorization header.
// Returns an empty string when the header is missing or not a Bearer
// scheme; credential validation happens downstream.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
