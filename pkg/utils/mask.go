package utils

import "strings"

// MaskName 保留首尾字符，中间替换为 *，如 홍길동 -> 홍*동
func MaskName(name string) string {
	r := []rune(strings.TrimSpace(name))
	switch len(r) {
	case 0:
		return ""
	case 1:
		return "*"
	case 2:
		return string(r[0]) + "*"
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}

// MaskEmail 只保留用户名前两位
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return MaskName(email)
	}
	local := []rune(email[:at])
	keep := 2
	if len(local) <= keep {
		keep = 1
	}
	return string(local[:keep]) + strings.Repeat("*", len(local)-keep) + email[at:]
}
