package main

import (
	"context"
	"time"

	"github.com/Dysin/cross-border/internal/infrastructure/rates"
	"github.com/Dysin/cross-border/pkg/config"
	"github.com/Dysin/cross-border/pkg/logger"
)

// fetchrates consulta la API de tasas de cambio y refresca la tabla CSV
// local que usa el binario analyze. Se ejecuta por separado para que las
// corridas de análisis sean reproducibles y no dependan de la red.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})

	if cfg.Rates.APIKey == "" {
		log.Fatal().Msg("EXCHANGE_RATE_API_KEY no configurada")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := rates.NewClient(cfg.Rates.APIKey, cfg.Rates.Base)
	table, err := client.FetchLatest(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("base", cfg.Rates.Base).Msg("consultar tasas")
	}

	if err := table.SaveCSV(cfg.Rates.CSVPath); err != nil {
		log.Fatal().Err(err).Str("path", cfg.Rates.CSVPath).Msg("guardar tabla")
	}

	log.Info().
		Str("base", cfg.Rates.Base).
		Str("path", cfg.Rates.CSVPath).
		Int("currencies", table.Len()).
		Msg("tabla de tasas actualizada")
}
