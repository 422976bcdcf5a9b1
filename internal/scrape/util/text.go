package util

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// CanonicalURL lowercases scheme/host, drops fragments and common
// tracking params, and sorts the rest so the same listing always
// produces the same URL key.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" || lk == "mkt_tok" ||
			lk == "trk" || lk == "trkemail" || lk == "reftid" {
			q.Del(k)
		}
	}

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range q[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	u.RawQuery = b.String()

	return strings.TrimSuffix(u.String(), "/")
}

var reSalaryRange = regexp.MustCompile(`\$\s?(\d[\d,]*(?:\.\d+)?)(K|k|M)?(?:\s*(?:-|–|to)\s*\$?\s?(\d[\d,]*(?:\.\d+)?)(K|k|M)?)?`)

// ParseSalary pulls a dollar range like "$70K - $90K" or "$120,000"
// out of free text. Either bound may be nil.
func ParseSalary(text string) (min, max *float64) {
	m := reSalaryRange.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}

	lo := parseAmount(m[1], m[2])
	if lo != nil {
		min = lo
	}
	if m[3] != "" {
		hi := parseAmount(m[3], m[4])
		if hi != nil {
			max = hi
		}
	}

	// A lone figure is treated as the floor of the range.
	if min != nil && max != nil && *max < *min {
		min, max = max, min
	}
	return min, max
}

func parseAmount(num, suffix string) *float64 {
	num = strings.ReplaceAll(num, ",", "")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil
	}
	switch strings.ToUpper(suffix) {
	case "K":
		v *= 1_000
	case "M":
		v *= 1_000_000
	}
	// Bare numbers under 1000 are almost always shorthand ("$90-$110").
	if v < 1000 {
		v *= 1_000
	}
	return &v
}
