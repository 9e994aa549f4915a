package data

import "strings"

// NotFoundError reports drug lookups that matched nothing in the catalog or
// the spending history. It always names the drugs that were asked for.
type NotFoundError struct {
	Names []string
}

func (e *NotFoundError) Error() string {
	return "could not find data for drug(s): " + strings.Join(e.Names, ", ")
}
