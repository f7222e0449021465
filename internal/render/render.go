// Package render formats coverage results for the result display surface.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/couchcryptid/hospital-coverage/internal/domain"
)

const (
	// Header introduces every rendered result.
	Header = "Coverage analysis:"

	// NoFacilities is shown instead of the breakdown when nothing is within range.
	NoFacilities = "❌ no nearby hospitals"
)

var htmlTemplate = template.Must(template.New("result").Funcs(template.FuncMap{
	"km": domain.FormatKM,
}).Parse(`<h3 class="coverage-header">{{.Header}}</h3>
{{- if eq .Result.Total 0}}
<div class="coverage-low">{{.NoFacilities}}</div>
{{- else}}
<div class="coverage-{{.Result.Level}}"><strong>Coverage level:</strong> {{.Result.Level.Label}}</div>
<div class="coverage-nearest"><strong>Nearest hospital:</strong><br>{{.Result.Nearest.Name}}<br>{{km .Result.Nearest.DistanceMeters}} km</div>
<div class="coverage-buckets"><strong>Distribution:</strong><br>
&bull; &lt;1 km: {{.Result.Counts.Near}}<br>
&bull; 1-3 km: {{.Result.Counts.Medium}}<br>
&bull; 3-5 km: {{.Result.Counts.Far}}<br>
Total: {{.Result.Total}}</div>
{{- end}}
`))

type view struct {
	Header       string
	NoFacilities string
	Result       domain.CoverageResult
}

// HTML writes the result as an escaped HTML fragment.
func HTML(w io.Writer, result domain.CoverageResult) error {
	if err := htmlTemplate.Execute(w, view{Header: Header, NoFacilities: NoFacilities, Result: result}); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// HTMLString is HTML rendered into a string.
func HTMLString(result domain.CoverageResult) (string, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, result); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Text renders the result as plain text lines.
func Text(result domain.CoverageResult) string {
	var b strings.Builder
	b.WriteString(Header + "\n")
	if result.Total == 0 || result.Nearest == nil {
		b.WriteString(NoFacilities + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Coverage level: %s\n", result.Level.Label())
	fmt.Fprintf(&b, "Nearest hospital: %s (%s km)\n", result.Nearest.Name, domain.FormatKM(result.Nearest.DistanceMeters))
	b.WriteString("Distribution:\n")
	fmt.Fprintf(&b, "  <1 km: %d\n", result.Counts.Near)
	fmt.Fprintf(&b, "  1-3 km: %d\n", result.Counts.Medium)
	fmt.Fprintf(&b, "  3-5 km: %d\n", result.Counts.Far)
	fmt.Fprintf(&b, "Total: %d\n", result.Total)
	return b.String()
}
