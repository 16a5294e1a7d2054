package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdCampaign es una corrida de campaña publicitaria: un gasto que cubre
// los SKUs objetivo dentro de una ventana de tiempo. Si cubre más de una
// unidad, el reparto se delega al motor de asignación.
type AdCampaign struct {
	CampaignID        string
	Spend             decimal.Decimal
	Currency          string
	TargetSKUs        []string
	Start             time.Time
	End               time.Time // exclusivo, intervalo semiabierto
	CustomersAcquired int64     // clientes nuevos atribuidos a la campaña
}

// InWindow indica si un timestamp cae dentro de la ventana de la campaña.
func (c AdCampaign) InWindow(t time.Time) bool {
	return !t.Before(c.Start) && t.Before(c.End)
}

// Targets indica si la campaña apunta al SKU dado.
func (c AdCampaign) Targets(sku string) bool {
	for _, s := range c.TargetSKUs {
		if s == sku {
			return true
		}
	}
	return false
}
