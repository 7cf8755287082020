package pkg

import (
	"strconv"
	"strings"
)

const defaultSlug = "community"

// Slugify 小写化，非 [a-z0-9] 的连续字符折叠成一个 "-"，去掉首尾的 "-"
func Slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return defaultSlug
	}
	return b.String()
}

// SlugCandidate 第 n 个候选：n<=1 为 base 本身，之后为 base-2、base-3 ...
func SlugCandidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
