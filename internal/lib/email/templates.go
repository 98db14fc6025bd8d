package email

import (
	"embed"
	"html/template"
	"strings"

	"github.com/Masterminds/sprig/v3"

	"github.com/deppfellow/storefront/internal/lib/money"
)

// Template names an embedded email body.
type Template string

const (
	TemplateWelcome             Template = "welcome"
	TemplateOrderConfirmation   Template = "order_confirmation"
	TemplateOrderShipped        Template = "order_shipped"
	TemplateContactNotification Template = "contact_notification"
	TemplateContactAutoReply    Template = "contact_autoreply"
	TemplateCampaign            Template = "campaign"
)

// Templates lists every template in a stable order.
var Templates = []Template{
	TemplateWelcome,
	TemplateOrderConfirmation,
	TemplateOrderShipped,
	TemplateContactNotification,
	TemplateContactAutoReply,
	TemplateCampaign,
}

//go:embed templates/*.html
var templateFS embed.FS

func funcMap() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["money"] = money.Format
	funcs["nl2br"] = func(s string) template.HTML {
		return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
	}
	return funcs
}

// parseTemplates compiles each page together with the shared layout.
func parseTemplates() (map[Template]*template.Template, error) {
	parsed := make(map[Template]*template.Template, len(Templates))
	for _, name := range Templates {
		tmpl, err := template.New(string(name)).
			Funcs(funcMap()).
			ParseFS(templateFS, "templates/layout.html", "templates/"+string(name)+".html")
		if err != nil {
			return nil, err
		}
		parsed[name] = tmpl
	}
	return parsed, nil
}
