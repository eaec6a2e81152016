//go:build linux

package judge

// Linux reports ru_maxrss in kilobytes.
func maxRssKb(maxrss int64) int64 {
	if maxrss < 0 {
		return 0
	}
	return maxrss
}
