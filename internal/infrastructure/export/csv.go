// Package export renders collected invoice rows into the CSV layouts the
// supported accounting services import.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	appbilling "github.com/Asdjeiflv/InvoicePilot/internal/application/billing"
)

// utf8BOM is prepended to every export so spreadsheet tools and the
// accounting importers detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const dateLayout = "2006-01-02"

// Renderer writes invoice rows in one accounting service's CSV layout.
type Renderer interface {
	// Name identifies the target format, e.g. "freee".
	Name() string
	Render(w io.Writer, rows []appbilling.ExportRow) error
}

// ForFormat returns the renderer for the requested format name.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "freee":
		return FreeeRenderer{}, nil
	case "moneyforward":
		return MoneyForwardRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// FreeeRenderer writes the freee deal-import layout.
type FreeeRenderer struct{}

// Name implements Renderer
func (FreeeRenderer) Name() string { return "freee" }

// Render implements Renderer
func (FreeeRenderer) Render(w io.Writer, rows []appbilling.ExportRow) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := []string{
		"収支区分", "発生日", "決済期日", "取引先コード", "取引先",
		"勘定科目", "金額", "税額", "備考",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			"収入",
			row.IssueDate.Format(dateLayout),
			row.DueDate.Format(dateLayout),
			row.ClientCode,
			row.ClientName,
			"売掛金",
			row.Total.StringFixed(2),
			row.TaxTotal.StringFixed(2),
			row.InvoiceNo,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MoneyForwardRenderer writes the MoneyForward Cloud invoice-import layout.
type MoneyForwardRenderer struct{}

// Name implements Renderer
func (MoneyForwardRenderer) Name() string { return "moneyforward" }

// Render implements Renderer
func (MoneyForwardRenderer) Render(w io.Writer, rows []appbilling.ExportRow) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := []string{
		"請求書番号", "取引先コード", "取引先名", "請求日", "支払期日",
		"小計", "消費税", "合計", "入金済額", "残額", "ステータス",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.InvoiceNo,
			row.ClientCode,
			row.ClientName,
			row.IssueDate.Format(dateLayout),
			row.DueDate.Format(dateLayout),
			row.Subtotal.StringFixed(2),
			row.TaxTotal.StringFixed(2),
			row.Total.StringFixed(2),
			row.PaidAmount.StringFixed(2),
			row.BalanceDue.StringFixed(2),
			row.Status.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
