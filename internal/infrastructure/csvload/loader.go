// Package csvload implementa la ingesta de los archivos CSV de entrada.
// Es un adaptador: valida esquema y tipos y entrega registros tipados; el
// núcleo del pipeline no sabe de formatos de archivo.
//
// Toda columna requerida ausente y toda celda no parseable es un
// ErrMalformedRecord con archivo y línea, nunca un valor por defecto.
package csvload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/entity"
)

// Archivos esperados dentro del directorio de datos.
const (
	FileProducts  = "products.csv"
	FileBatches   = "batches.csv"
	FileOrders    = "orders.csv"
	FileShipments = "shipments.csv"
	FileFees      = "fees.csv"
	FileCampaigns = "campaigns.csv"
	FileTariffs   = "tariffs.csv"
	FileVAT       = "vat.csv"
)

// LoadDataset carga el dataset completo desde el directorio de datos.
func LoadDataset(dir string) (*entity.Dataset, error) {
	products, err := LoadProducts(filepath.Join(dir, FileProducts))
	if err != nil {
		return nil, err
	}
	batches, err := LoadBatches(filepath.Join(dir, FileBatches))
	if err != nil {
		return nil, err
	}
	orders, err := LoadOrders(filepath.Join(dir, FileOrders))
	if err != nil {
		return nil, err
	}
	shipments, err := LoadShipments(filepath.Join(dir, FileShipments))
	if err != nil {
		return nil, err
	}
	fees, err := LoadFees(filepath.Join(dir, FileFees))
	if err != nil {
		return nil, err
	}
	campaigns, err := LoadCampaigns(filepath.Join(dir, FileCampaigns))
	if err != nil {
		return nil, err
	}
	tax, err := LoadTaxTables(filepath.Join(dir, FileTariffs), filepath.Join(dir, FileVAT))
	if err != nil {
		return nil, err
	}
	return &entity.Dataset{
		Products:  products,
		Batches:   batches,
		Orders:    orders,
		Shipments: shipments,
		Fees:      fees,
		Campaigns: campaigns,
		Tax:       tax,
	}, nil
}

// LoadProducts lee el catálogo de productos.
// Columnas: sku, name, supplier, unit_weight_kg.
func LoadProducts(path string) (map[string]entity.Product, error) {
	products := make(map[string]entity.Product)
	err := eachRow(path, []string{"sku", "name", "supplier", "unit_weight_kg"}, func(row rowReader) error {
		p := entity.Product{
			SKU:      row.str("sku"),
			Name:     row.str("name"),
			Supplier: row.str("supplier"),
		}
		p.UnitWeightKg = row.dec("unit_weight_kg")
		if p.SKU == "" {
			return row.fail("sku vacío")
		}
		products[p.SKU] = p
		return row.err()
	})
	return products, err
}

// LoadBatches lee los lotes de compra.
// Columnas: sku, batch_id, quantity, unit_cost, currency, purchased_at, pinned.
func LoadBatches(path string) ([]entity.ProductBatch, error) {
	var batches []entity.ProductBatch
	err := eachRow(path, []string{"sku", "batch_id", "quantity", "unit_cost", "currency", "purchased_at", "pinned"}, func(row rowReader) error {
		b := entity.ProductBatch{
			SKU:         row.str("sku"),
			BatchID:     row.str("batch_id"),
			Quantity:    row.int64("quantity"),
			UnitCost:    row.dec("unit_cost"),
			Currency:    row.str("currency"),
			PurchasedAt: row.date("purchased_at"),
			Pinned:      row.boolean("pinned"),
		}
		if b.Quantity <= 0 {
			return row.fail("quantity debe ser positiva")
		}
		if b.UnitCost.IsNegative() {
			return row.fail("unit_cost negativo")
		}
		batches = append(batches, b)
		return row.err()
	})
	return batches, err
}

// LoadOrders lee las líneas de venta.
// Columnas: order_id, sku, quantity, unit_price, currency, platform,
// destination, customer_id, at, batch_ref.
func LoadOrders(path string) ([]entity.OrderLine, error) {
	var orders []entity.OrderLine
	cols := []string{"order_id", "sku", "quantity", "unit_price", "currency", "platform", "destination", "customer_id", "at", "batch_ref"}
	err := eachRow(path, cols, func(row rowReader) error {
		l := entity.OrderLine{
			OrderID:            row.str("order_id"),
			SKU:                row.str("sku"),
			Quantity:           row.int64("quantity"),
			UnitPrice:          row.dec("unit_price"),
			Currency:           row.str("currency"),
			Platform:           row.str("platform"),
			DestinationCountry: row.str("destination"),
			CustomerID:         row.str("customer_id"),
			At:                 row.timestamp("at"),
			BatchRef:           row.str("batch_ref"),
		}
		if l.OrderID == "" || l.SKU == "" {
			return row.fail("order_id y sku son obligatorios")
		}
		if l.Quantity <= 0 {
			return row.fail("quantity debe ser positiva")
		}
		if l.UnitPrice.IsNegative() {
			return row.fail("unit_price negativo")
		}
		orders = append(orders, l)
		return row.err()
	})
	return orders, err
}

// LoadShipments lee los envíos.
// Columnas: shipment_id, order_id, channel, mode, weight_kg, volume_m3,
// destination, cost, rate_per_item, rate_per_kg, currency, covered_skus.
func LoadShipments(path string) ([]entity.Shipment, error) {
	var shipments []entity.Shipment
	cols := []string{"shipment_id", "order_id", "channel", "mode", "weight_kg", "volume_m3", "destination", "cost", "rate_per_item", "rate_per_kg", "currency", "covered_skus"}
	err := eachRow(path, cols, func(row rowReader) error {
		s := entity.Shipment{
			ShipmentID:  row.str("shipment_id"),
			OrderID:     row.str("order_id"),
			Channel:     row.str("channel"),
			Mode:        row.str("mode"),
			WeightKg:    row.dec("weight_kg"),
			VolumeM3:    row.dec("volume_m3"),
			Destination: row.str("destination"),
			Cost:        row.dec("cost"),
			RatePerItem: row.dec("rate_per_item"),
			RatePerKg:   row.dec("rate_per_kg"),
			Currency:    row.str("currency"),
		}
		if skus := row.str("covered_skus"); skus != "" {
			s.CoveredSKUs = strings.Split(skus, "|")
		}
		if s.ShipmentID == "" || s.OrderID == "" {
			return row.fail("shipment_id y order_id son obligatorios")
		}
		shipments = append(shipments, s)
		return row.err()
	})
	return shipments, err
}

// LoadFees lee la tabla de tarifas de plataformas.
// Columnas: platform, fee_type, rate, flat, currency.
func LoadFees(path string) (entity.FeeSchedule, error) {
	fees := make(entity.FeeSchedule)
	err := eachRow(path, []string{"platform", "fee_type", "rate", "flat", "currency"}, func(row rowReader) error {
		r := entity.FeeRule{
			Platform: row.str("platform"),
			Type:     entity.FeeType(row.str("fee_type")),
			Rate:     row.dec("rate"),
			Flat:     row.dec("flat"),
			Currency: row.str("currency"),
		}
		switch r.Type {
		case entity.FeeCommission, entity.FeeStorage, entity.FeeListing:
		default:
			return row.fail("fee_type desconocido: " + string(r.Type))
		}
		fees.Add(r)
		return row.err()
	})
	return fees, err
}

// LoadCampaigns lee las corridas de campañas publicitarias.
// Columnas: campaign_id, spend, currency, target_skus, start, end,
// customers_acquired.
func LoadCampaigns(path string) ([]entity.AdCampaign, error) {
	var campaigns []entity.AdCampaign
	cols := []string{"campaign_id", "spend", "currency", "target_skus", "start", "end", "customers_acquired"}
	err := eachRow(path, cols, func(row rowReader) error {
		c := entity.AdCampaign{
			CampaignID:        row.str("campaign_id"),
			Spend:             row.dec("spend"),
			Currency:          row.str("currency"),
			Start:             row.date("start"),
			End:               row.date("end"),
			CustomersAcquired: row.int64("customers_acquired"),
		}
		if skus := row.str("target_skus"); skus != "" {
			c.TargetSKUs = strings.Split(skus, "|")
		}
		if c.CampaignID == "" || len(c.TargetSKUs) == 0 {
			return row.fail("campaign_id y target_skus son obligatorios")
		}
		if c.End.Before(c.Start) {
			return row.fail("ventana invertida: end anterior a start")
		}
		campaigns = append(campaigns, c)
		return row.err()
	})
	return campaigns, err
}

// LoadTaxTables lee el esquema arancelario y las reglas de IVA.
// tariffs.csv: destination, rate. vat.csv: market, rate, base.
func LoadTaxTables(tariffPath, vatPath string) (entity.TaxTables, error) {
	tables := entity.TaxTables{
		Tariffs: make(map[string]decimal.Decimal),
		VAT:     make(map[string]entity.VATRule),
	}
	err := eachRow(tariffPath, []string{"destination", "rate"}, func(row rowReader) error {
		dest := row.str("destination")
		if dest == "" {
			return row.fail("destination vacío")
		}
		tables.Tariffs[dest] = row.dec("rate")
		return row.err()
	})
	if err != nil {
		return entity.TaxTables{}, err
	}
	err = eachRow(vatPath, []string{"market", "rate", "base"}, func(row rowReader) error {
		r := entity.VATRule{
			Market: row.str("market"),
			Rate:   row.dec("rate"),
			Base:   entity.VATBase(row.str("base")),
		}
		switch r.Base {
		case entity.VATBaseProduct, entity.VATBaseProductLogistics:
		default:
			return row.fail("base de IVA desconocida: " + string(r.Base))
		}
		tables.VAT[r.Market] = r
		return row.err()
	})
	if err != nil {
		return entity.TaxTables{}, err
	}
	return tables, nil
}

// ── Lectura genérica ──────────────────────────────────────────────────────────

// rowReader da acceso tipado a una fila; acumula el primer error de parseo
// para reportarlo con archivo y línea.
type rowReader struct {
	path    string
	line    int
	index   map[string]int
	values  []string
	failure *error
}

func (r rowReader) str(col string) string {
	return strings.TrimSpace(r.values[r.index[col]])
}

func (r rowReader) dec(col string) decimal.Decimal {
	raw := r.str(col)
	if raw == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		r.setFail(fmt.Sprintf("columna %s: %q no es decimal", col, raw))
		return decimal.Zero
	}
	return v
}

func (r rowReader) int64(col string) int64 {
	raw := r.str(col)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.setFail(fmt.Sprintf("columna %s: %q no es entero", col, raw))
		return 0
	}
	return v
}

func (r rowReader) boolean(col string) bool {
	switch strings.ToLower(r.str(col)) {
	case "", "0", "false", "no":
		return false
	case "1", "true", "yes":
		return true
	default:
		r.setFail(fmt.Sprintf("columna %s: %q no es booleano", col, r.str(col)))
		return false
	}
}

// date acepta fecha simple (2006-01-02) interpretada en UTC.
func (r rowReader) date(col string) time.Time {
	raw := r.str(col)
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		r.setFail(fmt.Sprintf("columna %s: %q no es fecha AAAA-MM-DD", col, raw))
		return time.Time{}
	}
	return t
}

// timestamp acepta RFC 3339 o fecha simple.
func (r rowReader) timestamp(col string) time.Time {
	raw := r.str(col)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return r.date(col)
}

func (r rowReader) setFail(msg string) {
	if *r.failure == nil {
		*r.failure = fmt.Errorf("%w: %s línea %d: %s", domain.ErrMalformedRecord, filepath.Base(r.path), r.line, msg)
	}
}

func (r rowReader) fail(msg string) error {
	r.setFail(msg)
	return *r.failure
}

func (r rowReader) err() error { return *r.failure }

// eachRow abre el CSV, valida que el encabezado tenga todas las columnas
// requeridas y entrega cada fila al callback.
func eachRow(path string, required []string, fn func(rowReader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("%w: %s sin encabezado: %v", domain.ErrMalformedRecord, filepath.Base(path), err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%w: %s: falta la columna %q", domain.ErrMalformedRecord, filepath.Base(path), col)
		}
	}

	for line := 2; ; line++ {
		values, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s línea %d: %v", domain.ErrMalformedRecord, filepath.Base(path), line, err)
		}
		var failure error
		row := rowReader{path: path, line: line, index: index, values: values, failure: &failure}
		if err := fn(row); err != nil {
			return err
		}
	}
}
