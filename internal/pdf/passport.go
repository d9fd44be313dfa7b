// Package pdf renders a printable digital product passport sheet.
package pdf

import (
	"fmt"
	"sort"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"skillchain/internal/entity"
)

var (
	colorPrimary = &props.Color{Red: 22, Green: 101, Blue: 52}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorFail    = &props.Color{Red: 185, Green: 28, Blue: 28}
)

// PassportSheet renders passport as an A4 PDF. qrContent is encoded in the footer
// when non-empty.
func PassportSheet(passport *entity.PublicPassport, qrContent string) ([]byte, error) {
	if passport == nil {
		return nil, fmt.Errorf("pdf: passport is nil")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Digital Product Passport "+passport.PassportID, true).
		WithAuthor(passport.Manufacturer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(passport))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(sectionTitle("Manufacturer"))
	m.AddRows(kvRow("Factory", passport.Manufacturer.Name))
	m.AddRows(kvRow("Location", nonEmpty(passport.Manufacturer.Location, "-")))
	m.AddRows(kvRow("Origin", nonEmpty(passport.Origin.Country, "-")))
	if passport.Origin.RawMaterialSource != "" {
		m.AddRows(kvRow("Raw material source", passport.Origin.RawMaterialSource))
	}

	m.AddRows(sectionTitle("Materials"))
	if len(passport.Materials) == 0 {
		m.AddRows(kvRow("Composition", "-"))
	}
	for _, material := range passport.Materials {
		m.AddRows(materialRow(material))
	}

	m.AddRows(sectionTitle("Environmental impact"))
	m.AddRows(kvRow("Carbon footprint", formatMeasure(passport.EnvironmentalImpact.CarbonFootprintKg, "kg CO2e")))
	m.AddRows(kvRow("Water usage", formatMeasure(passport.EnvironmentalImpact.WaterUsageLiters, "L")))
	m.AddRows(kvRow("Recycled content", formatMeasure(passport.EnvironmentalImpact.RecycledContentPct, "%")))
	if len(passport.Certifications) > 0 {
		m.AddRows(kvRow("Certifications", strings.Join(passport.Certifications, ", ")))
	}

	m.AddRows(sectionTitle("Compliance"))
	m.AddRows(complianceSummaryRow(passport.ComplianceStatus))
	for _, r := range byTypeRows(passport.ComplianceStatus.ByType) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(passport, qrContent))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate passport: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(passport *entity.PublicPassport) core.Row {
	return row.New(20).Add(
		col.New(8).Add(
			text.New(passport.ProductName, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("SKU %s   |   %s", passport.SKU, nonEmpty(passport.Category, "-")), props.Text{
				Size: 9, Top: 10, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("DIGITAL PRODUCT PASSPORT", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(passport.PassportID, props.Text{
				Size: 7, Align: align.Right, Top: 7,
			}),
			text.New("Updated "+passport.LastUpdated.Format("2006-01-02"), props.Text{
				Size: 7, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(9).Add(col.New(12).Add(
		text.New(strings.ToUpper(title), props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 3,
		}),
	))
}

func kvRow(label, value string) core.Row {
	return row.New(6).Add(
		col.New(4).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
		col.New(8).Add(text.New(value, props.Text{Size: 8, Top: 1})),
	)
}

func materialRow(material entity.Material) core.Row {
	detail := make([]string, 0, 2)
	if material.Origin != "" {
		detail = append(detail, material.Origin)
	}
	if material.Certification != "" {
		detail = append(detail, material.Certification)
	}
	return row.New(6).Add(
		col.New(4).Add(text.New(material.Material, props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(fmt.Sprintf("%.1f%%", material.Percentage), props.Text{Size: 8, Top: 1, Align: align.Right})),
		col.New(6).Add(text.New(strings.Join(detail, " / "), props.Text{Size: 8, Top: 1, Left: 3, Color: colorGray})),
	)
}

func complianceSummaryRow(status entity.ComplianceStatus) core.Row {
	verdict := "Not verified"
	color := colorFail
	if status.Verified {
		verdict = "Verified"
		color = colorPrimary
	}
	return row.New(8).Add(
		col.New(4).Add(text.New(verdict, props.Text{Style: fontstyle.Bold, Size: 10, Color: color, Top: 1})),
		col.New(8).Add(text.New(
			fmt.Sprintf("Score %.1f   |   %d of %d checks passed", status.Score, status.PassedChecks, status.TotalChecks),
			props.Text{Size: 8, Top: 2},
		)),
	)
}

func byTypeRows(byType map[string]entity.TypeStatus) []core.Row {
	types := make([]string, 0, len(byType))
	for eventType := range byType {
		types = append(types, eventType)
	}
	sort.Strings(types)

	rows := make([]core.Row, 0, len(types))
	for _, eventType := range types {
		entry := byType[eventType]
		rows = append(rows, row.New(6).Add(
			col.New(4).Add(text.New(humanize(eventType), props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(entry.Status, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
			col.New(3).Add(text.New(nonEmpty(entry.Area, "-"), props.Text{Size: 8, Top: 1, Color: colorGray})),
			col.New(2).Add(text.New(entry.Date.Format("2006-01-02"), props.Text{Size: 8, Top: 1, Align: align.Right})),
		))
	}
	return rows
}

func footerRow(passport *entity.PublicPassport, qrContent string) core.Row {
	notice := "This passport was issued by " + nonEmpty(passport.Manufacturer.Name, "the manufacturer") +
		". Scan the code to view the live record."
	if strings.TrimSpace(qrContent) == "" {
		return row.New(10).Add(col.New(12).Add(
			text.New(notice, props.Text{Size: 7, Color: colorGray, Top: 2}),
		))
	}
	return row.New(45).Add(
		col.New(4).Add(code.NewQr(qrContent, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(
			text.New(notice, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New(qrContent, props.Text{Size: 7, Top: 16, Left: 3}),
		),
	)
}

func formatMeasure(value *float64, unit string) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f %s", *value, unit)
}

func humanize(eventType string) string {
	words := strings.Split(strings.ToLower(eventType), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
