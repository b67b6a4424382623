package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"flight-price-service/internal/domain"

	"github.com/dustin/go-humanize"
)

const reportTemplate = `<html>
  <body style="font-family:Arial,Helvetica,sans-serif;">
    <h2 style="color:#004472;">Flight Price Report</h2>
    <p><strong>Search completed:</strong> {{.Generated}}</p>
    <p id="success-rate"><strong>Success rate:</strong> {{.Succeeded}}/{{.Total}} routes ({{printf "%.1f" .Rate}}%)</p>
    {{if .Lowest}}<p id="lowest-fare" style="font-size:16px;"><strong>Lowest fare found:</strong> <span style="color:#2e8b57;font-size:18px;">{{.Currency}} {{.Lowest}}</span></p>
    {{else}}<p id="lowest-fare">No numeric fares were returned.</p>
    {{end}}<table id="fares" style="border-collapse:collapse;width:100%;font-family:Arial,Helvetica,sans-serif;">
      <tr>
        <th style="background:#004472;color:#fff;border:1px solid #ddd;padding:8px;">Destination</th>
        {{range .Origins}}<th style="background:#004472;color:#fff;border:1px solid #ddd;padding:8px;">{{.}}</th>
        {{end}}
      </tr>
      {{range $i, $row := .Rows}}<tr style="background:{{if odd $i}}#f7f7f7{{else}}#ffffff{{end}};">
        <td style="border:1px solid #ddd;padding:8px;">{{$row.Destination}}</td>
        {{range $row.Cells}}<td style="border:1px solid #ddd;padding:8px;text-align:center;">{{if .Best}}<span class="best" style="color:#2e8b57;font-weight:bold;">{{.Price}}</span>{{else}}{{.Price}}{{end}}<br><span class="itinerary" style="font-size:12px;color:#555;">{{.Itinerary}}</span></td>
        {{end}}
      </tr>
      {{end}}
    </table>
    <p style="font-size:12px;color:#777;">Generated on {{.Generated}}</p>
  </body>
</html>
`

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"odd": func(i int) bool { return i%2 == 1 },
}).Parse(reportTemplate))

type reportCell struct {
	Price     string
	Itinerary string
	Best      bool
}

type reportRow struct {
	Destination string
	Cells       []reportCell
}

type reportData struct {
	Generated string
	Succeeded int
	Total     int
	Rate      float64
	Currency  string
	Lowest    string
	Origins   []string
	Rows      []reportRow
}

// RenderHTML lays the sweep out with destinations as rows and origins as
// columns. Cells holding the minimum price are highlighted.
func RenderHTML(result *domain.SweepResult, generatedAt time.Time) (string, error) {
	if result == nil {
		return "", fmt.Errorf("render report: result is nil")
	}

	data := reportData{
		Generated: generatedAt.Format("2006-01-02 15:04:05"),
		Succeeded: result.SuccessCount(),
		Total:     len(result.Outcomes),
		Currency:  result.Currency,
		Origins:   result.Matrix.Origins,
	}
	if data.Total > 0 {
		data.Rate = float64(data.Succeeded) / float64(data.Total) * 100
	}
	if result.MinPrice.Valid {
		data.Lowest = humanize.Comma(result.MinPrice.Decimal.Round(0).IntPart())
	}

	for _, dest := range result.Matrix.Destinations {
		row := reportRow{Destination: dest}
		for _, origin := range result.Matrix.Origins {
			o, ok := result.Outcome(origin, dest)
			if !ok {
				o = domain.RouteOutcome{Origin: origin, Destination: dest, Status: domain.OutcomeUnavailable}
			}
			row.Cells = append(row.Cells, reportCell{
				Price:     o.DisplayPrice(),
				Itinerary: o.DisplayItinerary(),
				Best:      result.MinPrice.Valid && o.Amount.Valid && o.Amount.Decimal.Equal(result.MinPrice.Decimal),
			})
		}
		data.Rows = append(data.Rows, row)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render report: execute template: %w", err)
	}
	return buf.String(), nil
}

// Subject is the report email subject for the given day.
func Subject(day time.Time) string {
	return "Daily Flight Price Report – " + day.Format(domain.DateLayout)
}
