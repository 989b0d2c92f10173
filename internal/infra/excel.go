package infra

import (
	"fmt"
	"io"

	"sistemainventario/internal/dto"

	"github.com/xuri/excelize/v2"
)

const hojaValorizacion = "Valorizacion"

// EscribirValorizacionXLSX writes the inventory valuation as a single-sheet
// workbook: one row per product and a closing total row.
func EscribirValorizacionXLSX(w io.Writer, v *dto.ValorizacionResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hojaValorizacion); err != nil {
		return err
	}

	encabezados := []interface{}{"Código", "Producto", "Categoría", "Stock", "Costo unitario", "Valor"}
	if err := f.SetSheetRow(hojaValorizacion, "A1", &encabezados); err != nil {
		return err
	}
	estilo, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(hojaValorizacion, "A1", "F1", estilo); err != nil {
		return err
	}

	fila := 2
	for _, it := range v.Items {
		valores := []interface{}{
			it.Codigo,
			it.Nombre,
			it.Categoria,
			it.StockActual,
			it.CostoUnitario.InexactFloat64(),
			it.Valor.InexactFloat64(),
		}
		if err := f.SetSheetRow(hojaValorizacion, fmt.Sprintf("A%d", fila), &valores); err != nil {
			return err
		}
		fila++
	}

	total := []interface{}{"", "", "", "", "TOTAL", v.Total.InexactFloat64()}
	if err := f.SetSheetRow(hojaValorizacion, fmt.Sprintf("A%d", fila), &total); err != nil {
		return err
	}
	if err := f.SetCellStyle(hojaValorizacion, fmt.Sprintf("E%d", fila), fmt.Sprintf("F%d", fila), estilo); err != nil {
		return err
	}
	if err := f.SetColWidth(hojaValorizacion, "B", "C", 30); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
