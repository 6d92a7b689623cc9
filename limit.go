package dbh

import (
	"strconv"
)

/*
Renders a limit clause for pagination. The result begins with a space, or is
empty when `limit` is nil. The offset is only rendered when present:

	dbh.BuildLimit(nil, &ten)      // " limit 10"
	dbh.BuildLimit(&twenty, &ten)  // " limit 20,10"
	dbh.BuildLimit(&twenty, nil)   // ""
*/
func BuildLimit(offset, limit *int) string {
	if limit == nil {
		return ""
	}

	buf := []byte(` limit `)
	if offset != nil {
		buf = strconv.AppendInt(buf, int64(*offset), 10)
		buf = append(buf, ',')
	}
	buf = strconv.AppendInt(buf, int64(*limit), 10)
	return bytesToMutableString(buf)
}
