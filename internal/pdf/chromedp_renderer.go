package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/inklane/inklane/internal/models"
)

const contractTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Georgia, serif; margin: 48px; color: #1a1a1a; }
  h1 { font-size: 22px; border-bottom: 1px solid #ccc; padding-bottom: 8px; }
  .amounts { margin: 16px 0; }
  .field { margin: 6px 0; }
  .field .key { font-weight: bold; }
  .signature { margin-top: 32px; border-top: 1px solid #ccc; padding-top: 12px; }
  .signature img { max-height: 64px; }
  .meta { color: #666; font-size: 11px; }
</style>
</head>
<body>
  <h1>{{.Contract.Title}}</h1>
  <div class="amounts">
    <div class="field"><span class="key">Total:</span> {{.Total}}</div>
    <div class="field"><span class="key">Deposit:</span> {{.Deposit}}</div>
  </div>
  {{range $k, $v := .Fields}}
  <div class="field"><span class="key">{{$k}}:</span> {{$v}}</div>
  {{end}}
  {{range .Signatures}}
  <div class="signature">
    <div><strong>{{.Party}}</strong>: {{.FullName}}</div>
    {{if .ImageData}}<img src="{{.ImageData}}" alt="signature">{{end}}
    <div class="meta">Signed {{.SignedAt.Format "Jan 2, 2006 15:04 MST"}} &middot; {{.ContentHash}}</div>
  </div>
  {{end}}
</body>
</html>`

// ChromeRenderer prints the contract HTML to PDF through a headless Chrome
// instance.
type ChromeRenderer struct {
	tmpl    *template.Template
	timeout time.Duration
}

func NewChromeRenderer() (*ChromeRenderer, error) {
	tmpl, err := template.New("contract").Parse(contractTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract template: %w", err)
	}
	return &ChromeRenderer{tmpl: tmpl, timeout: 30 * time.Second}, nil
}

func (r *ChromeRenderer) Render(ctx context.Context, contract *models.Contract, signatures []models.Signature) ([]byte, error) {
	html, err := r.renderHTML(contract, signatures)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)

	var buf []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print contract to PDF: %w", err)
	}
	return buf, nil
}

func (r *ChromeRenderer) renderHTML(contract *models.Contract, signatures []models.Signature) ([]byte, error) {
	fields := make(map[string]interface{}, len(contract.FieldValues))
	for k, v := range contract.FieldValues {
		if k == models.BrandingKey {
			continue
		}
		fields[k] = v
	}

	data := map[string]interface{}{
		"Contract":   contract,
		"Fields":     fields,
		"Signatures": signatures,
		"Total":      formatCents(contract.TotalAmount),
		"Deposit":    formatCents(contract.DepositAmount),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render contract HTML: %w", err)
	}
	return buf.Bytes(), nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
