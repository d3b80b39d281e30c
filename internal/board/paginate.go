package board

import (
	"strconv"
	"strings"
)

// NextPageURL derives the URL for the following results page from the
// board's path-based pagination scheme: "sales-jobs" becomes
// "sales-jobs-2", "sales-jobs-2" becomes "sales-jobs-3". Query parameters
// are carried over unchanged.
func NextPageURL(current string) string {
	base, query, hasQuery := strings.Cut(current, "?")

	slash := strings.LastIndex(base, "/")
	prefix, segment := base[:slash+1], base[slash+1:]

	var next string
	switch {
	case strings.Contains(segment, "-jobs"):
		parts := strings.Split(segment, "-")
		if page, err := strconv.Atoi(parts[len(parts)-1]); err == nil && len(parts) > 1 {
			next = prefix + strings.Join(parts[:len(parts)-1], "-") + "-" + strconv.Itoa(page+1)
		} else {
			next = base + "-2"
		}
	default:
		next = base + "-2"
	}

	if hasQuery {
		return next + "?" + query
	}
	return next
}
