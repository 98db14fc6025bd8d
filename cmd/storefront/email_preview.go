package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/lib/email"
)

const previewUnsubscribeURL = "https://example.com/newsletter/baja?token=preview"

func newEmailPreviewCmd() *cobra.Command {
	names := make([]string, 0, len(email.Templates))
	for _, t := range email.Templates {
		names = append(names, string(t))
	}

	return &cobra.Command{
		Use:       "email-preview <template>",
		Short:     "Render an email template with sample data to stdout",
		Long:      "Templates: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderPreview(cmd.OutOrStdout(), email.Template(args[0]))
		},
	}
}

// renderPreview needs no environment: branding comes from sample values.
func renderPreview(w io.Writer, name email.Template) error {
	data, ok := email.PreviewData[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{PublicURL: "https://example.com"},
		Store:  config.StoreConfig{Name: "Storefront"},
	}
	nop := zerolog.Nop()
	client, err := email.NewClient(cfg, &nop)
	if err != nil {
		return err
	}

	unsubscribeURL := ""
	if name == email.TemplateCampaign {
		unsubscribeURL = previewUnsubscribeURL
	}
	html, err := client.Render(name, data, unsubscribeURL)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, html)
	return err
}
