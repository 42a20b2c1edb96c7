package affiliation

// Other is the escape option that reveals the free-text affiliation field.
const Other = "(Other)"

// staticFallback is served for roles without a remote source, and whenever a remote lookup
// answers with a non-200 status.
var staticFallback = []string{"Admin", "Bar Staff", "Security"}

// Fallback returns a fresh copy of the static affiliation list.
func Fallback() []string {
	out := make([]string, len(staticFallback))
	copy(out, staticFallback)
	return out
}

// Options returns the choices shown in the affiliation select: Other first, then names.
// POST: result[0] == Other; names keep their source order
func Options(names []string) []string {
	out := make([]string, 0, len(names)+1)
	out = append(out, Other)
	return append(out, names...)
}

// Resolve picks the affiliation from a select value and the free-text field.
// A selected list entry wins unless it is Other (or nothing was selected).
func Resolve(selected, other string) string {
	if selected != "" && selected != Other {
		return selected
	}
	return other
}

// Contains reports whether name is one of the listed affiliations.
func Contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
