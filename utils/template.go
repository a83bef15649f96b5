package utils

import (
	"net/url"
	"sort"
	"strings"
)

// FillTemplate swaps each {key} placeholder in tmpl for the query-escaped value in params.
// Placeholders without a matching param are left untouched.
func FillTemplate(tmpl string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", url.QueryEscape(params[k]))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
