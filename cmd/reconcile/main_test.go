package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/pkg/format"
)

func sampleReports() []inventory.ReconciliationReport {
	return []inventory.ReconciliationReport{
		{
			ProductID: "p1", SKU: "LEC-001", ProductName: "Leche sin lactosa", Unit: "l",
			CurrentStock: decimal.RequireFromString("10"), BatchTotal: decimal.RequireFromString("6.5"),
			Drift: decimal.RequireFromString("3.5"), ActiveBatches: 2,
		},
		{
			ProductID: "p2", SKU: "JAM-001", ProductName: "Jamón", Unit: "kg",
			CurrentStock: decimal.RequireFromString("2"), BatchTotal: decimal.RequireFromString("2"),
			Drift: decimal.Zero, ActiveBatches: 1, Applied: true,
		},
	}
}

func TestWriteCSV_UTF8(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, "utf8", sampleReports()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "product_id;sku;"))
	assert.Equal(t, "p1;LEC-001;Leche sin lactosa;l;10;6.5;3.5;2;false", lines[1])
	assert.Contains(t, lines[2], "Jamón")
}

func TestWriteCSV_Latin1CodificaAcentos(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, "latin1", sampleReports()))

	assert.True(t, bytes.Contains(buf.Bytes(), []byte{'J', 'a', 'm', 0xF3, 'n'}), "ó debe quedar como 0xF3")
	assert.False(t, bytes.Contains(buf.Bytes(), []byte("Jamón")))
}

func TestWriteCSV_CodificacionDesconocida(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeCSV(&buf, "ebcdic", sampleReports()))
}

func TestWriteTable_EstadoYTotales(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, format.New("en-US"), sampleReports()))

	out := buf.String()
	assert.Contains(t, out, "descuadrado")
	assert.Contains(t, out, "corregido")
	assert.Contains(t, out, "3.5 l")
	assert.Contains(t, out, "2 producto(s)")
}
