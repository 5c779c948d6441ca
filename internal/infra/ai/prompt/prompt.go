package prompt

import (
	"bytes"
	"encoding/json"
	"text/template"
)

// Version identifies the prompt set. Bump it whenever a template changes so
// analysis metadata can be traced back to the wording that produced it.
const Version = "2024-06.v1"

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		return string(b), err
	},
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		// templates are static and data is typed; a failure here is a programming error
		panic(err)
	}
	return buf.String()
}
