package service

import (
	"fmt"
	"net/url"
	"strings"
)

// UTM 入站请求携带的活动参数，空串视为未提供
type UTM struct {
	Source   string
	Medium   string
	Campaign string
}

// Pairs 已提供的参数，按 source / medium / campaign 顺序
func (u UTM) Pairs() [][2]string {
	var out [][2]string
	if u.Source != "" {
		out = append(out, [2]string{"utm_source", u.Source})
	}
	if u.Medium != "" {
		out = append(out, [2]string{"utm_medium", u.Medium})
	}
	if u.Campaign != "" {
		out = append(out, [2]string{"utm_campaign", u.Campaign})
	}
	return out
}

// BuildDestination 把 UTM 参数合并进推广链接
// 直接改写 RawQuery：已提供的 utm_* 在原位置替换（重复的只保留第一个），缺少的追加到末尾，
// 其余片段按原顺序逐字节保留；链接必须是带 scheme 与 host 的绝对地址
func BuildDestination(rawURL string, utm UTM) (string, error) {
	dest, err := url.Parse(rawURL)
	if err != nil {
		return "", &InternalError{Op: "parse destination url", Err: err}
	}
	if dest.Scheme == "" || dest.Host == "" {
		return "", &InternalError{Op: "parse destination url", Err: fmt.Errorf("not an absolute url: %q", rawURL)}
	}

	pairs := utm.Pairs()
	if len(pairs) == 0 {
		return dest.String(), nil
	}
	dest.RawQuery = mergeQuery(dest.RawQuery, pairs)
	return dest.String(), nil
}

// mergeQuery 按 "&" 切分原始查询串，只动 pairs 中出现的键
func mergeQuery(rawQuery string, pairs [][2]string) string {
	values := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		values[kv[0]] = kv[1]
	}
	written := make(map[string]bool, len(pairs))

	var segments []string
	if rawQuery != "" {
		segments = strings.Split(rawQuery, "&")
	}
	out := make([]string, 0, len(segments)+len(pairs))
	for _, seg := range segments {
		key := queryKey(seg)
		v, ok := values[key]
		if !ok {
			out = append(out, seg)
			continue
		}
		if written[key] {
			continue
		}
		written[key] = true
		out = append(out, url.QueryEscape(key)+"="+url.QueryEscape(v))
	}
	for _, kv := range pairs {
		if !written[kv[0]] {
			out = append(out, url.QueryEscape(kv[0])+"="+url.QueryEscape(kv[1]))
		}
	}
	return strings.Join(out, "&")
}

// queryKey 片段的键；无法解码时原样返回，不会与 utm_* 匹配
func queryKey(segment string) string {
	key, _, _ := strings.Cut(segment, "=")
	if k, err := url.QueryUnescape(key); err == nil {
		return k
	}
	return key
}
