package utils

import "strconv"

// ParseFlag reads an optional boolean query parameter. Anything that is not a
// recognised boolean counts as false.
func ParseFlag(s string) bool {
	flag, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}

	return flag
}
