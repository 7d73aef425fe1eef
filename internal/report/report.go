// Package report renders a banquet event order for the kitchen and for
// publishing.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"banquet-planner/internal/beo"
)

const (
	// DisplayDateLayout formats event dates the way they are printed on a BEO.
	DisplayDateLayout = "Monday, January 2, 2006"
	title             = "Banquet Event Order"
)

// FormatQuantity renders a quantity with two decimals.
func FormatQuantity(q float64) string {
	return fmt.Sprintf("%.2f", q)
}

func displayDate(o *beo.Order) string {
	if o.Date.IsZero() {
		return "TBD"
	}
	return o.Date.Format(DisplayDateLayout)
}

// Title returns the headline used for a published order.
func Title(o *beo.Order) string {
	return fmt.Sprintf("%s: %s", title, o.Event.Name)
}

// Text renders the order as a plain-text report.
func Text(o *beo.Order) string {
	var sb strings.Builder

	heading := strings.ToUpper(title)
	sb.WriteString(heading + "\n")
	sb.WriteString(strings.Repeat("=", len(heading)) + "\n\n")

	fmt.Fprintf(&sb, "Event: %s\n", o.Event.Name)
	fmt.Fprintf(&sb, "Date: %s\n", displayDate(o))
	fmt.Fprintf(&sb, "Guest Count: %d\n", o.Event.GuestCount)
	if req := strings.TrimSpace(o.Event.SpecialRequirements); req != "" {
		fmt.Fprintf(&sb, "Special Requirements:\n%s\n", req)
	}

	sb.WriteString("\nMENU ITEMS\n----------\n")
	for _, item := range o.Items {
		fmt.Fprintf(&sb, "\n%s (Quantity: %d)\n", item.Recipe.Name, item.Quantity)
		if item.Recipe.Description != "" {
			fmt.Fprintf(&sb, "%s\n", item.Recipe.Description)
		}
		if allergens := sortedCopy(item.Recipe.Allergens); len(allergens) > 0 {
			fmt.Fprintf(&sb, "Allergens: %s\n", strings.Join(allergens, ", "))
		}
		tbl := newTable("Ingredient", "Quantity", "Unit").alignRight(1)
		for _, l := range item.Lines {
			tbl.addRow(l.Name, FormatQuantity(l.Quantity), l.Unit)
		}
		sb.WriteString(tbl.render())
	}

	sb.WriteString("\nCONSOLIDATED SHOPPING LIST\n--------------------------\n")
	tbl := newTable("Ingredient", "Total Quantity", "Unit").alignRight(1)
	for _, name := range o.ShoppingList.Names() {
		e := o.ShoppingList[name]
		tbl.addRow(name, FormatQuantity(e.Quantity), e.Unit)
	}
	sb.WriteString(tbl.render())

	allergens := o.Allergens.String()
	if allergens == "" {
		allergens = "None"
	}
	fmt.Fprintf(&sb, "\nALLERGENS: %s\n", allergens)
	return sb.String()
}

var htmlTemplate = template.Must(template.New("beo").Funcs(template.FuncMap{
	"qty": FormatQuantity,
}).Parse(`<h2>{{.Event.Name}}</h2>
<p><strong>Date:</strong> {{.Date}}<br>
<strong>Guest Count:</strong> {{.Event.GuestCount}}</p>
{{- if .Event.SpecialRequirements}}
<p><strong>Special Requirements:</strong><br>{{.Event.SpecialRequirements}}</p>
{{- end}}
<h3>Menu Items</h3>
{{- range .Items}}
<h4>{{.Recipe.Name}} (Quantity: {{.Quantity}})</h4>
{{- if .Recipe.Description}}
<p><em>{{.Recipe.Description}}</em></p>
{{- end}}
{{- if .Allergens}}
<p><strong>Allergens:</strong> {{.Allergens}}</p>
{{- end}}
<table>
<tr><th>Ingredient</th><th>Quantity</th><th>Unit</th></tr>
{{- range .Lines}}
<tr><td>{{.Name}}</td><td>{{qty .Quantity}}</td><td>{{.Unit}}</td></tr>
{{- end}}
</table>
{{- end}}
<h3>Consolidated Shopping List</h3>
<table>
<tr><th>Ingredient</th><th>Total Quantity</th><th>Unit</th></tr>
{{- range .Shopping}}
<tr><td>{{.Name}}</td><td>{{qty .Quantity}}</td><td>{{.Unit}}</td></tr>
{{- end}}
</table>
<p><strong>Allergens:</strong> {{.Allergens}}</p>
`))

type htmlItem struct {
	beo.MenuItem
	Allergens string
}

type htmlRow struct {
	Name     string
	Quantity float64
	Unit     string
}

// HTML renders the order as an HTML fragment suitable for a blog post body.
func HTML(o *beo.Order) (string, error) {
	items := make([]htmlItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, htmlItem{
			MenuItem:  item,
			Allergens: strings.Join(sortedCopy(item.Recipe.Allergens), ", "),
		})
	}
	rows := make([]htmlRow, 0, len(o.ShoppingList))
	for _, name := range o.ShoppingList.Names() {
		e := o.ShoppingList[name]
		rows = append(rows, htmlRow{Name: name, Quantity: e.Quantity, Unit: e.Unit})
	}
	allergens := o.Allergens.String()
	if allergens == "" {
		allergens = "None"
	}

	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, struct {
		Event     beo.Event
		Date      string
		Items     []htmlItem
		Shopping  []htmlRow
		Allergens string
	}{
		Event:     o.Event,
		Date:      displayDate(o),
		Items:     items,
		Shopping:  rows,
		Allergens: allergens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render order HTML: %w", err)
	}
	return buf.String(), nil
}

func sortedCopy(in []string) []string {
	set := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := set[s]; ok {
			continue
		}
		set[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
