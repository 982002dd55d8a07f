package transform

import (
	"strings"

	"github.com/lexware-office/go-lexware-client/core"
)

// EventTypes lists the webhook event types Lexware Office can deliver.
var EventTypes = []string{
	"article.created", "article.changed", "article.deleted",
	"contact.created", "contact.changed", "contact.deleted",
	"credit-note.created", "credit-note.changed", "credit-note.deleted", "credit-note.status.changed",
	"delivery-note.created", "delivery-note.changed", "delivery-note.deleted", "delivery-note.status.changed",
	"down-payment-invoice.created", "down-payment-invoice.changed", "down-payment-invoice.deleted", "down-payment-invoice.status.changed",
	"dunning.created", "dunning.changed", "dunning.deleted",
	"invoice.created", "invoice.changed", "invoice.deleted", "invoice.status.changed",
	"order-confirmation.created", "order-confirmation.changed", "order-confirmation.deleted", "order-confirmation.status.changed",
	"payment.changed",
	"quotation.created", "quotation.changed", "quotation.deleted", "quotation.status.changed",
	"recurring-template.created", "recurring-template.changed", "recurring-template.deleted",
	"token.revoked",
	"voucher.created", "voucher.changed", "voucher.deleted", "voucher.status.changed",
}

// TransformEventSubscriptionData builds a webhook subscription body.
func TransformEventSubscriptionData(fields core.Params) (core.Params, error) {
	body := core.Params{}
	setIf(body, "eventType", strings.ToLower(fields.GetString("eventType")))
	setIf(body, "callbackUrl", fields.GetString("callbackUrl"))
	return body, nil
}
