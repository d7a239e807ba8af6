package common

import "strings"

// DefaultPageExt is extension of rendered item pages.
const DefaultPageExt = ".html"

// ItemIDFromPath derives item identifier from the page location: last path
// segment with page extension removed, upper-cased. Any input produces some
// identifier, whether it names an existing record is decided by the loader.
func ItemIDFromPath(path, ext string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	// drop query and fragment if page location was passed as URL path
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(ext) > 0 && len(path) >= len(ext) && strings.EqualFold(path[len(path)-len(ext):], ext) {
		path = path[:len(path)-len(ext)]
	}
	return strings.ToUpper(path)
}
