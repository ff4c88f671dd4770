package funcs

import (
	"strings"
	"text/template"
	"time"
)

var TemplateFuncs = template.FuncMap{
	"now":        time.Now,
	"formatTime": formatTime,
	"upper":      strings.ToUpper,
	"lower":      strings.ToLower,
	"title":      title,
}

func formatTime(format string, t time.Time) string {
	return t.Format(format)
}

func title(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
