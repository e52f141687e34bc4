// Package templates holds the HTML pages, embedded into the binary.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"projectmanager/calendar"
)

//go:embed *.html
var files embed.FS

// New parses every page. Dates render in the given calendar; timestamps
// are converted to loc first.
func New(cal string, loc *time.Location) (*template.Template, error) {
	if !calendar.Valid(cal) {
		return nil, fmt.Errorf("unknown calendar %q", cal)
	}

	funcs := template.FuncMap{
		"date": func(v interface{}) string {
			return calendar.FormatDate(toTime(v), cal)
		},
		"datetime": func(v interface{}) string {
			return calendar.FormatDateTime(toTime(v), cal, loc)
		},
	}

	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(files, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func toTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	}
	return time.Time{}
}
