package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/finadmin/tesoreria/internal/domain/entity"
)

// EmailNotifier emails the configured approver when a package requests an
// authorization folio. It satisfies port.ApproverNotifier.
type EmailNotifier struct {
	dialer        *gomail.Dialer
	senderName    string
	senderEmail   string
	approverEmail string
	logger        *zap.Logger
}

// NewEmailNotifier creates an SMTP-backed approver notifier
func NewEmailNotifier(host string, port int, user, password, senderName, senderEmail, approverEmail string, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		dialer:        gomail.NewDialer(host, port, user, password),
		senderName:    senderName,
		senderEmail:   senderEmail,
		approverEmail: approverEmail,
		logger:        logger,
	}
}

// NotifyFolioRequested sends the folio-pending email to the approver
func (n *EmailNotifier) NotifyFolioRequested(ctx context.Context, folio *entity.AuthorizationFolio, pkg *entity.Package) error {
	n.logger.Info("Sending folio request notification",
		zap.String("folio_code", folio.Code),
		zap.Int64("package_id", pkg.ID),
		zap.String("approver", n.approverEmail))

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.senderEmail, n.senderName)
	m.SetHeader("To", n.approverEmail)
	m.SetHeader("Subject", fmt.Sprintf("Folio de autorización pendiente - %s", folio.Code))
	m.SetBody("text/html", n.buildBody(folio, pkg))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send folio notification: %w", err)
	}
	return nil
}

func (n *EmailNotifier) buildBody(folio *entity.AuthorizationFolio, pkg *entity.Package) string {
	return fmt.Sprintf(`<html>
<body>
<h2>Solicitud de folio de autorización</h2>
<p>El paquete <strong>#%d</strong> excede el presupuesto asignado y requiere autorización para enviarse a tesorería.</p>
<table border="0" cellpadding="4">
<tr><td>Folio:</td><td><strong>%s</strong></td></tr>
<tr><td>Solicitado por:</td><td>%s</td></tr>
<tr><td>Fecha de pago:</td><td>%s</td></tr>
<tr><td>Total a pagar:</td><td>%s</td></tr>
<tr><td>Motivo:</td><td>%s</td></tr>
</table>
<p>Autorice o rechace el folio desde el panel de tesorería.</p>
</body>
</html>`,
		pkg.ID,
		folio.Code,
		folio.RequestedBy,
		pkg.PaymentDate.Format("2006-01-02"),
		pkg.TotalToPay.StringFixed(2),
		folio.Reason,
	)
}

// NopNotifier is used when no approver channel is configured.
type NopNotifier struct{}

// NotifyFolioRequested is a no-op
func (NopNotifier) NotifyFolioRequested(ctx context.Context, folio *entity.AuthorizationFolio, pkg *entity.Package) error {
	return nil
}
