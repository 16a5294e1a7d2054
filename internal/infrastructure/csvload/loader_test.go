package csvload_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/entity"
	"github.com/Dysin/cross-border/internal/infrastructure/csvload"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeDataset escribe un directorio de datos completo y válido.
func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, csvload.FileProducts,
		"sku,name,supplier,unit_weight_kg\n"+
			"VAPE-01,Vape Case,Shenzhen Ltd,0.1\n")
	writeFile(t, dir, csvload.FileBatches,
		"sku,batch_id,quantity,unit_cost,currency,purchased_at,pinned\n"+
			"VAPE-01,B1,100,17.50,CNY,2025-01-05,false\n"+
			"VAPE-01,B2,50,18.00,CNY,2025-02-01,true\n")
	writeFile(t, dir, csvload.FileOrders,
		"order_id,sku,quantity,unit_price,currency,platform,destination,customer_id,at,batch_ref\n"+
			"O1,VAPE-01,2,7.00,USD,amazon,US,CUST-1,2025-03-10T12:00:00Z,\n")
	writeFile(t, dir, csvload.FileShipments,
		"shipment_id,order_id,channel,mode,weight_kg,volume_m3,destination,cost,rate_per_item,rate_per_kg,currency,covered_skus\n"+
			"S1,O1,yunexpress,air,0.2,0.001,US,1.20,,,USD,VAPE-01\n")
	writeFile(t, dir, csvload.FileFees,
		"platform,fee_type,rate,flat,currency\n"+
			"amazon,commission,0.05,,\n"+
			"amazon,storage,,0.40,USD\n")
	writeFile(t, dir, csvload.FileCampaigns,
		"campaign_id,spend,currency,target_skus,start,end,customers_acquired\n"+
			"C1,1.00,USD,VAPE-01,2025-03-01,2025-04-01,2\n")
	writeFile(t, dir, csvload.FileTariffs,
		"destination,rate\nUS,0.10\n")
	writeFile(t, dir, csvload.FileVAT,
		"market,rate,base\nUS,0.10,product_logistics\n")
	return dir
}

func TestLoadDataset_Completo(t *testing.T) {
	ds, err := csvload.LoadDataset(writeDataset(t))
	require.NoError(t, err)

	require.Contains(t, ds.Products, "VAPE-01")
	assert.Equal(t, "Vape Case", ds.Products["VAPE-01"].Name)

	require.Len(t, ds.Batches, 2)
	assert.False(t, ds.Batches[0].Pinned)
	assert.True(t, ds.Batches[1].Pinned)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), ds.Batches[0].PurchasedAt)

	require.Len(t, ds.Orders, 1)
	o := ds.Orders[0]
	assert.Equal(t, "O1", o.OrderID)
	assert.Equal(t, int64(2), o.Quantity)
	assert.Equal(t, "US", o.DestinationCountry)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), o.At.UTC())

	require.Len(t, ds.Shipments, 1)
	assert.Equal(t, []string{"VAPE-01"}, ds.Shipments[0].CoveredSKUs)

	commission, ok := ds.Fees.Lookup("amazon", entity.FeeCommission)
	require.True(t, ok)
	assert.True(t, commission.Rate.String() == "0.05")
	_, ok = ds.Fees.Lookup("amazon", entity.FeeStorage)
	assert.True(t, ok)

	require.Len(t, ds.Campaigns, 1)
	assert.Equal(t, []string{"VAPE-01"}, ds.Campaigns[0].TargetSKUs)

	assert.Contains(t, ds.Tax.Tariffs, "US")
	assert.Equal(t, entity.VATBaseProductLogistics, ds.Tax.VAT["US"].Base)
}

// TestLoadOrders_CeldaIlegibleReportaArchivoYLinea: el error identifica el
// archivo y la línea del registro malo, y no entrega valores por defecto.
func TestLoadOrders_CeldaIlegibleReportaArchivoYLinea(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, csvload.FileOrders,
		"order_id,sku,quantity,unit_price,currency,platform,destination,customer_id,at,batch_ref\n"+
			"O1,VAPE-01,dos,7.00,USD,amazon,US,CUST-1,2025-03-10,\n")

	_, err := csvload.LoadOrders(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRecord))
	assert.Contains(t, err.Error(), "orders.csv")
	assert.Contains(t, err.Error(), "línea 2")
}

func TestLoadOrders_ColumnaFaltanteEsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, csvload.FileOrders,
		"order_id,sku,quantity\nO1,VAPE-01,2\n")

	_, err := csvload.LoadOrders(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRecord))
	assert.Contains(t, err.Error(), "unit_price")
}

func TestLoadBatches_CantidadNoPositivaEsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, csvload.FileBatches,
		"sku,batch_id,quantity,unit_cost,currency,purchased_at,pinned\n"+
			"VAPE-01,B1,0,17.50,CNY,2025-01-05,false\n")

	_, err := csvload.LoadBatches(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRecord))
}

func TestLoadFees_TipoDesconocidoEsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, csvload.FileFees,
		"platform,fee_type,rate,flat,currency\namazon,propina,0.05,,\n")

	_, err := csvload.LoadFees(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRecord))
}

func TestLoadCampaigns_VentanaInvertidaEsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, csvload.FileCampaigns,
		"campaign_id,spend,currency,target_skus,start,end,customers_acquired\n"+
			"C1,1.00,USD,VAPE-01,2025-04-01,2025-03-01,0\n")

	_, err := csvload.LoadCampaigns(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRecord))
}

func TestLoadVAT_BaseDesconocidaEsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, csvload.FileTariffs, "destination,rate\nUS,0.10\n")
	vat := writeFile(t, dir, csvload.FileVAT, "market,rate,base\nUS,0.10,todo_incluido\n")

	_, err := csvload.LoadTaxTables(filepath.Join(dir, csvload.FileTariffs), vat)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRecord))
}

func TestLoadDataset_ArchivoAusenteEsError(t *testing.T) {
	_, err := csvload.LoadDataset(t.TempDir())
	assert.Error(t, err)
}
