package main

import (
	"strings"
	"unicode"
)

func (ctx Context) ident(v string) string {
	v, _ = strings.CutPrefix(v, ctx.Config.Prefix)
	return ctx.camel(v)
}

func (ctx Context) camel(v string) string {
	var buf strings.Builder
	buf.Grow(len(v))
	shift := true
	for _, c := range v {
		if c == '_' {
			shift = true
			continue
		}

		if shift {
			c = unicode.ToUpper(c)
		}
		buf.WriteRune(c)
		shift = false
	}
	return buf.String()
}
