package includecache

import "fmt"

type byteSize int64

func (x byteSize) String() string {
	val := float64(x)
	prefixes := []string{"", "K", "M", "G", "T", "P"}
	var pfx string
	for _, pfx = range prefixes {
		if val <= 1000.0 {
			break
		}
		val /= 1024.0
	}
	return fmt.Sprintf("%.3g%sB", val, pfx)
}
