package publish

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"scpview/config"
	"scpview/record"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context     string
	ID          string
	Item        string
	ObjectClass string
	Image       string
}

func expandTemplate(id string, rec *record.Record, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context: string(name),
		ID:      id,
	}
	if rec != nil {
		values.Item = rec.Item
		values.ObjectClass = rec.ObjectClass
		values.Image = rec.Image
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
