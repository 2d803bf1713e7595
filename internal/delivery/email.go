package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"mykitchen/internal/shopping"

	"github.com/a-h/templ"
)

// ShoppingListEmail renders the HTML body sent with an exported list.
func ShoppingListEmail(list shopping.ListResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><body style="font-family: sans-serif;">`)
		fmt.Fprintf(&b, `<h1>%s</h1>`, templ.EscapeString(list.Name))
		if list.GeneratedFrom != "" {
			fmt.Fprintf(&b, `<p><em>Generated from %s</em></p>`, templ.EscapeString(list.GeneratedFrom))
		}
		b.WriteString(`<ul>`)
		for _, item := range list.Items {
			style := ""
			if item.Checked {
				style = ` style="text-decoration: line-through;"`
			}
			fmt.Fprintf(&b, `<li%s>%s %s %s</li>`,
				style,
				templ.EscapeString(formatAmount(item.Amount)),
				templ.EscapeString(item.Unit),
				templ.EscapeString(item.Name),
			)
		}
		b.WriteString(`</ul><p>Your list is attached as a PDF.</p></body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ShoppingListText is the plain-text alternative of ShoppingListEmail.
func ShoppingListText(list shopping.ListResponse) string {
	var b strings.Builder
	b.WriteString(list.Name)
	b.WriteString("\n")
	if list.GeneratedFrom != "" {
		fmt.Fprintf(&b, "Generated from %s\n", list.GeneratedFrom)
	}
	b.WriteString("\n")
	for _, item := range list.Items {
		fmt.Fprintf(&b, "%s %s %s %s\n", checkbox(item.Checked), formatAmount(item.Amount), item.Unit, item.Name)
	}
	return b.String()
}

// ShoppingListMessage builds the complete email for list, PDF included.
func ShoppingListMessage(ctx context.Context, to string, list shopping.ListResponse) (Message, error) {
	var html bytes.Buffer
	if err := ShoppingListEmail(list).Render(ctx, &html); err != nil {
		return Message{}, fmt.Errorf("render email: %w", err)
	}

	pdf, err := RenderShoppingListPDF(list)
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: "Your shopping list: " + list.Name,
		HTML:    html.String(),
		Text:    ShoppingListText(list),
		Attachments: []Attachment{
			{Name: PDFFilename(list), Data: pdf},
		},
	}, nil
}
