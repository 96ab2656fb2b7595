package email

import (
	"embed"
	"html/template"
)

// Template is a string-based enum naming email templates.
type Template string

const (
	// TemplateWelcome corresponds to templates/welcome.html
	TemplateWelcome Template = "welcome"
	// TemplateEnrollment corresponds to templates/enrollment.html
	TemplateEnrollment Template = "enrollment"
	// TemplateCertificate corresponds to templates/certificate.html
	TemplateCertificate Template = "certificate"
)

//go:embed templates/*.html
var templateFS embed.FS

// templates holds every email template, parsed once. Each is looked up by
// its file name, e.g. "welcome.html".
var templates = template.Must(template.New("emails").Option("missingkey=error").ParseFS(templateFS, "templates/*.html"))

func (t Template) fileName() string {
	return string(t) + ".html"
}
