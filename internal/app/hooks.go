package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/forecourt-hq/forecourt/internal/ap"
	"github.com/forecourt-hq/forecourt/internal/ar"
	"github.com/forecourt-hq/forecourt/internal/customers"
	"github.com/forecourt-hq/forecourt/internal/inventory"
	"github.com/forecourt-hq/forecourt/internal/pos"
	"github.com/forecourt-hq/forecourt/internal/settings"
	"github.com/forecourt-hq/forecourt/internal/suppliers"
)

// CreditSaleInvoicer raises an AR invoice for every credit-tendered
// sale, with the due date derived from the customer's credit terms.
type CreditSaleInvoicer struct {
	Invoices  *ar.Service
	Customers *customers.Repository
}

// PostCreditSale satisfies pos.InvoicePoster.
func (h CreditSaleInvoicer) PostCreditSale(ctx context.Context, sale *pos.Sale) error {
	customer, err := h.Customers.Get(ctx, sale.CustomerID)
	if err != nil {
		return fmt.Errorf("load customer %d: %w", sale.CustomerID, err)
	}
	_, err = h.Invoices.CreateInvoice(ctx, ar.InvoiceInput{
		CustomerID: customer.ID,
		SaleID:     sale.ID,
		Number:     "INV-" + strings.TrimPrefix(sale.ReceiptNumber, "RCT-"),
		Currency:   sale.Currency,
		Total:      sale.Total,
		IssuedAt:   sale.SoldAt,
		DueAt:      sale.SoldAt.AddDate(0, 0, customer.CreditTerms),
	})
	return err
}

var _ pos.InvoicePoster = CreditSaleInvoicer{}

// DeliveryBiller raises an AP bill for every supplier-billed fuel
// delivery, due per the supplier's payment terms.
type DeliveryBiller struct {
	Bills     *ap.Service
	Suppliers *suppliers.Repository
	Settings  *settings.Repository
}

// PostDeliveryBill satisfies inventory.BillPoster.
func (h DeliveryBiller) PostDeliveryBill(ctx context.Context, delivery *inventory.Delivery) (int64, error) {
	terms := 0
	if h.Suppliers != nil {
		supplier, err := h.Suppliers.Get(ctx, delivery.SupplierID)
		if err != nil {
			return 0, fmt.Errorf("load supplier %d: %w", delivery.SupplierID, err)
		}
		terms = supplier.PaymentTerms
	}
	currency := settings.Defaults().CurrencyCode
	if h.Settings != nil {
		cfg, err := h.Settings.Load(ctx)
		if err != nil {
			return 0, err
		}
		currency = cfg.CurrencyCode
	}
	bill, err := h.Bills.CreateBill(ctx, ap.BillInput{
		SupplierID: delivery.SupplierID,
		DeliveryID: delivery.ID,
		Number:     fmt.Sprintf("BILL-D%06d", delivery.ID),
		Currency:   currency,
		Total:      delivery.TotalCost,
		IssuedAt:   delivery.DeliveredAt,
		DueAt:      delivery.DeliveredAt.AddDate(0, 0, terms),
	})
	if err != nil {
		return 0, err
	}
	return bill.ID, nil
}

var _ inventory.BillPoster = DeliveryBiller{}
