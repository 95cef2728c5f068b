package feed

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultBaseURL 为策略结果的远端根地址。
	DefaultBaseURL  = "https://result.strat.nileverest.co/strategy"
	DefaultFileName = "volume_profile_strategy.json"
)

// datePathRe matches /YYYY/MM/DD/<name>.json with an optional /strategy
// prefix, which is how dated dashboard URLs are shaped.
var datePathRe = regexp.MustCompile(`^/?(?:strategy/)?(\d{4})/(\d{2})/(\d{2})/([^/]+\.json)$`)

// DatePath renders the dated result path for t, e.g.
// 2025/06/20/volume_profile_strategy.json.
func DatePath(t time.Time, fileName string) string {
	if strings.TrimSpace(fileName) == "" {
		fileName = DefaultFileName
	}
	return fmt.Sprintf("%04d/%02d/%02d/%s", t.Year(), int(t.Month()), t.Day(), fileName)
}

// ParseDatePath 校验并清洗日期路径，返回不带前导斜杠的形式。
func ParseDatePath(p string) (string, error) {
	m := datePathRe.FindStringSubmatch(strings.TrimSpace(p))
	if m == nil {
		return "", fmt.Errorf("invalid date path %q: want YYYY/MM/DD/<file>.json", p)
	}
	if _, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3]); err != nil {
		return "", fmt.Errorf("invalid date in path %q: %w", p, err)
	}
	return path.Join(m[1], m[2], m[3], m[4]), nil
}

// Endpoint joins datePath onto base.
func Endpoint(base, datePath string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", base)
	}
	clean, err := ParseDatePath(datePath)
	if err != nil {
		return "", err
	}
	return u.JoinPath(clean).String(), nil
}
