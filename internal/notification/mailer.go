// Package notification sends client-facing emails. Sending is fire-and-forget
// from the workflow's point of view: a loan is already persisted before any
// email is attempted, so failures surface as warnings and never roll back.
package notification

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/prestasys/loan-origination/internal/amortization"
	"github.com/prestasys/loan-origination/internal/config"
	"github.com/prestasys/loan-origination/internal/domain"
	"github.com/prestasys/loan-origination/pkg/utils"
)

// Sender delivers notification emails.
type Sender interface {
	SendLoanRegistered(client *domain.ClientRecord, terms domain.LoanTerms, schedule []amortization.Entry) error
	SendLoanCompleted(client string, email string, loanID string) error
}

// EmailSender sends through SMTP via gomail.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendLoanRegistered emails the client their new loan details with the
// payment schedule as an HTML table and a plain-text attachment.
func (s *EmailSender) SendLoanRegistered(client *domain.ClientRecord, terms domain.LoanTerms, schedule []amortization.Entry) error {
	if client.Email == "" {
		return fmt.Errorf("client %s has no registered email address", client.DocumentNumber)
	}

	var body strings.Builder
	fmt.Fprintf(&body, `
		<h2>Estimado(a) %s</h2>
		<p>Le informamos que se ha registrado un préstamo a su nombre con los siguientes detalles:</p>
		<ul>
			<li><strong>Monto:</strong> %s</li>
			<li><strong>Plazo:</strong> %d meses</li>
			<li><strong>Tasa de interés anual:</strong> %s%%</li>
			<li><strong>Fecha de emisión:</strong> %s</li>
		</ul>
		<p>A continuación se detalla el cronograma de pagos:</p>
		<table border="1" cellpadding="5" cellspacing="0">
			<tr><th>Cuota</th><th>Fecha de Pago</th><th>Cuota Mensual</th><th>Interés</th><th>Amortización</th><th>Saldo</th></tr>
	`,
		client.DisplayName(),
		utils.FormatCurrency(terms.Principal),
		terms.TermMonths,
		terms.AnnualRatePercent.String(),
		utils.FormatDate(terms.StartDate),
	)

	for _, entry := range schedule {
		fmt.Fprintf(&body,
			`<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			entry.Sequence,
			utils.FormatDate(entry.DueDate),
			utils.FormatCurrency(entry.Payment),
			utils.FormatCurrency(entry.Interest),
			utils.FormatCurrency(entry.Principal),
			utils.FormatCurrency(entry.Balance),
		)
	}

	body.WriteString(`
		</table>
		<p>Gracias por confiar en nosotros.</p>
		<p>Atentamente,<br>Sistema de Préstamos</p>
	`)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", client.Email)
	m.SetHeader("Subject", "Préstamo Registrado - Sistema de Préstamos")
	m.SetBody("text/html", body.String())
	m.Attach("cronograma_pagos.txt", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write([]byte(scheduleAttachment(schedule)))
		return err
	}))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending loan registration email: %w", err)
	}

	return nil
}

// SendLoanCompleted congratulates the client once every installment is paid.
func (s *EmailSender) SendLoanCompleted(clientName, email, loanID string) error {
	if email == "" {
		return fmt.Errorf("client has no registered email address")
	}

	body := fmt.Sprintf(`
		<h2>Estimado(a) %s</h2>
		<p>Su préstamo %s ha sido pagado en su totalidad el %s.</p>
		<p>Gracias por confiar en nosotros.</p>
		<p>Atentamente,<br>Sistema de Préstamos</p>
	`, clientName, loanID, utils.FormatDate(time.Now()))

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Préstamo Cancelado - Sistema de Préstamos")
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending loan completion email: %w", err)
	}

	return nil
}

func scheduleAttachment(schedule []amortization.Entry) string {
	var sb strings.Builder
	for _, entry := range schedule {
		fmt.Fprintf(&sb, "Cuota %d - Fecha: %s - Monto: %s\n",
			entry.Sequence,
			utils.FormatDate(entry.DueDate),
			utils.FormatCurrency(entry.Payment),
		)
	}
	return sb.String()
}
