// Package tracking defines the domain model for the Korealy tracking
// synchronizer: shipping-notification records parsed from partner emails,
// the observed fulfillment state of commerce-platform orders, the closed
// error taxonomy shared by all adapters, and the MailSource and
// FulfillmentClient ports the infrastructure layer implements.
package tracking
