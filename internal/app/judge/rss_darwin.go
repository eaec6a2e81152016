//go:build darwin

package judge

// Darwin reports ru_maxrss in bytes.
func maxRssKb(maxrss int64) int64 {
	if maxrss < 0 {
		return 0
	}
	return maxrss / 1024
}
