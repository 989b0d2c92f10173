package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"sistemainventario/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarFacturaPDF renders an invoice as an A4 document into storagePath
// (created if needed) and returns the path of the written file. The invoice
// must have its Detalles, and each line's Producto, loaded.
func GenerarFacturaPDF(f *model.Factura, empresa, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("factura_%s.pdf", f.NumeroFactura))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(empresa), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Factura de Venta", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, tr("Factura N° "+f.NumeroFactura), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 6, f.FechaVenta.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW/2, 6, tr("Cliente: "+f.NombreCliente()), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 6, "Estado: "+f.Estado, "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ── Lines ────────────────────────────────────────────────────────────────
	colCodigo := contentW * 0.15
	colNombre := contentW * 0.40
	colCant := contentW * 0.10
	colPrecio := contentW * 0.17
	colSub := contentW * 0.18

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(colCodigo, 7, tr("Código"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(colNombre, 7, "Producto", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colCant, 7, "Cant", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colPrecio, 7, "P. Unitario", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colSub, 7, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, d := range f.Detalles {
		codigo, nombre := "", ""
		if d.Producto != nil {
			codigo = d.Producto.Codigo
			nombre = d.Producto.Nombre()
		}
		if r := []rune(nombre); len(r) > 45 {
			nombre = string(r[:44]) + "…"
		}
		pdf.CellFormat(colCodigo, 6, tr(codigo), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colNombre, 6, tr(nombre), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colCant, 6, fmt.Sprintf("%d", d.Cantidad), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colPrecio, 6, "$"+d.PrecioUnitario.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colSub, 6, "$"+d.Subtotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	etiquetaW := contentW - colSub
	pdf.CellFormat(etiquetaW, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colSub, 6, "$"+f.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	if !f.Descuento.IsZero() {
		pdf.CellFormat(etiquetaW, 6, "Descuento:", "", 0, "R", false, 0, "")
		pdf.CellFormat(colSub, 6, "-$"+f.Descuento.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(etiquetaW, 7, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colSub, 7, "$"+f.Total.StringFixed(2), "", 1, "R", false, 0, "")

	if f.Observaciones != nil && *f.Observaciones != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr("Observaciones: "+*f.Observaciones), "", "L", false)
	}
	if f.Estado == model.FacturaAnulada {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(contentW, 8, "ANULADA", "", 1, "C", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
