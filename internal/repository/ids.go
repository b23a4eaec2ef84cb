package repository

import "strconv"

// uniqueID builds prefix+millis, adding -2, -3, ... until taken reports false.
func uniqueID(prefix string, millis int64, taken func(string) bool) string {
	base := prefix + strconv.FormatInt(millis, 10)
	id := base
	for n := 2; taken(id); n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}
