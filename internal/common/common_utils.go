package common

import (
	"fmt"
	"time"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// TotalPages returns how many pages of pageSize hold count rows.
func TotalPages(count int64, pageSize int) int {
	if count == 0 || pageSize <= 0 {
		return 0
	}
	return int((count + int64(pageSize) - 1) / int64(pageSize))
}
