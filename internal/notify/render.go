package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

const layout = `<!DOCTYPE html><html><body style="font-family:sans-serif">
<p>Hi {{if .CustomerName}}{{.CustomerName}}{{else}}there{{end}},</p>
{{template "content" .}}
<p>Order {{.OrderNumber}}</p>
<p>Print Society</p>
</body></html>`

var templates = map[Kind]emailTemplate{
	OrderConfirmed: newTemplate("Order %s confirmed",
		`<p>Thanks for your order. The total charged is {{.Total}}. We will email you a proof of your artwork to approve before anything is printed.</p>`),
	ProofReady: newTemplate("Your proof for order %s is ready",
		`<p>Version {{.VersionNumber}} of your proof is ready for review.</p>
<p><a href="{{.ProofURL}}">Review your proof</a></p>
{{if .Deadline}}<p>Please approve or request changes by {{.Deadline.Format "Mon 2 Jan 2006 15:04 MST"}}.</p>{{end}}`),
	ProofApproved: newTemplate("Proof approved for order %s",
		`<p>Thanks for approving your proof. Your order is now queued for production.</p>`),
	RevisionRequested: newTemplate("We received your changes for order %s",
		`<p>Our designers are working on your requested changes:</p>
<blockquote>{{.Comment}}</blockquote>
<p>You have {{.RevisionsRemaining}} revision(s) remaining.</p>`),
	OrderShipped: newTemplate("Order %s has shipped",
		`<p>Your stickers are on their way.</p>
{{if .TrackingURL}}<p><a href="{{.TrackingURL}}">Track parcel {{.TrackingNumber}}</a></p>{{else}}<p>Tracking number: {{.TrackingNumber}}</p>{{end}}`),
	OrderDelivered: newTemplate("Order %s was delivered",
		`<p>Your order has been delivered. We hope you love it.</p>`),
	OrderCancelled: newTemplate("Order %s was cancelled",
		`<p>Your order has been cancelled.{{if .Reason}} Reason: {{.Reason}}{{end}}</p>`),
}

func newTemplate(subject, content string) emailTemplate {
	t := template.Must(template.New("layout").Parse(layout))
	template.Must(t.New("content").Parse(content))
	return emailTemplate{subject: subject, body: t}
}

// Render builds the email for intent.
func Render(intent Intent) (Email, error) {
	tmpl, ok := templates[intent.Kind]
	if !ok {
		return Email{}, fmt.Errorf("no template for %s", intent.Kind)
	}
	if strings.TrimSpace(intent.To) == "" {
		return Email{}, fmt.Errorf("%s for order %s: no recipient", intent.Kind, intent.OrderNumber)
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, intent); err != nil {
		return Email{}, fmt.Errorf("failed to render %s: %w", intent.Kind, err)
	}

	return Email{
		To:      intent.To,
		Subject: fmt.Sprintf(tmpl.subject, intent.OrderNumber),
		HTML:    buf.String(),
	}, nil
}
