package reports

import (
	_ "embed"
	"html/template"
)

//go:embed templates/page.html
var pageTemplateSource string

var pageTemplate = template.Must(template.New("page").Parse(pageTemplateSource))

// pageData is the template input for one page
type pageData struct {
	Title       string
	Header      template.HTML
	Chart       template.HTML
	Unavailable bool
	Notice      string
	Version     string
	GeneratedAt string
}
