package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"dealdesk/internal/models"
)

// layoutTmpl is the fixed document layout: header, parties, value box,
// deliverables table, terms body, signature blocks. The renderer upstream
// paginates it; nothing here depends on contract status beyond display.
var layoutTmpl = template.Must(template.New("contract").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Georgia, serif; color: #1a1a1a; margin: 48px; }
  h1 { font-size: 22px; margin-bottom: 2px; }
  .muted { color: #666; font-size: 12px; }
  .parties { display: flex; justify-content: space-between; margin: 24px 0; }
  .valuebox { border: 1px solid #ccc; padding: 12px 16px; margin: 16px 0; font-size: 15px; }
  table { width: 100%; border-collapse: collapse; margin: 16px 0; }
  th, td { border-bottom: 1px solid #ddd; text-align: left; padding: 8px 6px; font-size: 13px; }
  th { font-size: 11px; text-transform: uppercase; color: #666; }
  .num { text-align: right; }
  .terms p { font-size: 13px; line-height: 1.55; }
  .sigs { display: flex; justify-content: space-between; margin-top: 48px; }
  .sigblock { width: 45%; border-top: 1px solid #1a1a1a; padding-top: 6px; font-size: 12px; }
  .sigblock img { max-height: 60px; display: block; margin-bottom: 4px; }
</style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="muted">Status: {{.Status}}{{if .Term}} &middot; Term: {{.Term}}{{end}}</div>

  <div class="parties">
    <div>
      <strong>Client</strong><br>
      {{.ClientName}}{{if .ClientCompany}}<br>{{.ClientCompany}}{{end}}{{if .ClientAddress}}<br>{{.ClientAddress}}{{end}}{{if .ClientEmail}}<br>{{.ClientEmail}}{{end}}
    </div>
    <div class="muted">Contract #{{.ID}}</div>
  </div>

  <div class="valuebox">Total contract value: <strong>{{.Total}}</strong></div>

  {{if .Deliverables}}
  <table>
    <tr><th>Deliverable</th><th>Description</th><th class="num">Price</th><th>Billing</th></tr>
    {{range .Deliverables}}
    <tr><td>{{.Name}}</td><td>{{.Description}}</td><td class="num">{{printf "%.2f" .Price}}</td><td>{{.PriceType}}</td></tr>
    {{end}}
  </table>
  {{end}}

  <div class="terms">
    {{range .Paragraphs}}<p>{{.}}</p>
    {{end}}
  </div>

  <div class="sigs">
    {{range .Signatures}}
    <div class="sigblock">
      {{if .Image}}<img src="{{.Image}}" alt="signature">{{end}}
      {{.SignerName}} ({{.SignerType}})<br>
      <span class="muted">{{.SignedAt}}</span>
    </div>
    {{end}}
  </div>
</body>
</html>
`))

type layoutSig struct {
	SignerName string
	SignerType string
	SignedAt   string
	Image      template.URL
}

type layoutData struct {
	ID            uint
	Title         string
	Status        string
	Term          string
	ClientName    string
	ClientCompany string
	ClientEmail   string
	ClientAddress string
	Total         string
	Deliverables  []models.Deliverable
	Paragraphs    []string
	Signatures    []layoutSig
}

// Layout renders the contract snapshot to the HTML handed to the headless
// renderer. Deterministic for a given snapshot.
func Layout(c *models.Contract, sigs []models.Signature) ([]byte, error) {
	title := c.Title
	if title == "" {
		title = "Service Agreement"
	}
	data := layoutData{
		ID:            c.ID,
		Title:         title,
		Status:        c.Status,
		Term:          c.Term,
		ClientName:    c.ClientName,
		ClientCompany: c.ClientCompany,
		ClientEmail:   c.ClientEmail,
		ClientAddress: c.ClientAddress,
		Total:         fmt.Sprintf("%.2f", c.TotalValue),
		Deliverables:  c.Deliverables,
		Paragraphs:    paragraphs(c.Content),
	}
	for _, s := range sigs {
		img := template.URL("")
		if strings.HasPrefix(s.ImageData, "data:image/") {
			img = template.URL(s.ImageData)
		}
		data.Signatures = append(data.Signatures, layoutSig{
			SignerName: s.SignerName,
			SignerType: s.SignerType,
			SignedAt:   s.CreatedAt.Format("Jan 2, 2006 15:04 MST"),
			Image:      img,
		})
	}
	var buf bytes.Buffer
	if err := layoutTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return buf.Bytes(), nil
}

func paragraphs(content string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
