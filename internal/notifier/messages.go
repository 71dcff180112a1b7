package notifier

import (
	"fmt"
	"strings"

	"github.com/pryme0/vyb-q-admin/internal/models"
)

const signature = "The Restaurant Team"

func OrderSMS(order models.Order) string {
	return fmt.Sprintf("Your order #%d has been received! Total: KES %.2f. Thank you for dining with us!", order.ID, order.Total)
}

func OrderStatusSMS(order models.Order) string {
	return fmt.Sprintf("Your order #%d is now %s.", order.ID, order.Status)
}

func ReservationSMS(r models.Reservation) string {
	return fmt.Sprintf("Hi %s, your table for %d on %s is %s.",
		r.Name, r.PartySize, r.ReservedAt.Format("Mon 2 Jan 15:04"), r.Status)
}

func OrderConfirmationEmail(customer models.Customer, order models.Order) Email {
	var lines strings.Builder
	var htmlLines strings.Builder
	for _, it := range order.Items {
		fmt.Fprintf(&lines, "  %d x %s @ KES %.2f\n", it.Quantity, it.Name, it.Price)
		fmt.Fprintf(&htmlLines, "<li>%d x %s @ KES %.2f</li>", it.Quantity, it.Name, it.Price)
	}

	text := fmt.Sprintf(
		"Dear %s,\n\nThank you for your order! Order #%d has been placed.\n\n"+
			"Items:\n%s\nSubtotal: KES %.2f\nDiscounts: KES %.2f\nTotal: KES %.2f\n\n"+
			"We'll let you know when it is on its way.\n\nBest regards,\n%s",
		customer.Name, order.ID, lines.String(), order.Subtotal, order.DiscountTotal, order.Total, signature)

	html := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>Thank you for your order! Order #%d has been placed.</p>
            <ul>%s</ul>
            <p>Subtotal: KES %.2f<br>Discounts: KES %.2f<br><strong>Total: KES %.2f</strong></p>
            <p>We'll let you know when it is on its way.</p>
            <p>Best regards,<br>%s</p>
        </body>
        </html>`,
		customer.Name, order.ID, htmlLines.String(), order.Subtotal, order.DiscountTotal, order.Total, signature)

	return Email{
		To:      []string{customer.Email},
		Subject: fmt.Sprintf("Order #%d Confirmation - Thank You!", order.ID),
		Text:    text,
		HTML:    html,
	}
}

// ReportEmail mails a generated report as an attachment.
func ReportEmail(recipients []string, title string, file Attachment) Email {
	return Email{
		To:          recipients,
		Subject:     title,
		Text:        fmt.Sprintf("Hello,\n\nThe report \"%s\" is attached.\n\n%s", title, signature),
		Attachments: []Attachment{file},
	}
}
