package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Dysin/cross-border/internal/application/pipeline"
	"github.com/Dysin/cross-border/internal/domain/profit"
	"github.com/Dysin/cross-border/internal/infrastructure/chart"
	"github.com/Dysin/cross-border/internal/infrastructure/csvload"
	"github.com/Dysin/cross-border/internal/infrastructure/pdf"
	"github.com/Dysin/cross-border/internal/infrastructure/rates"
	"github.com/Dysin/cross-border/internal/interfaces/report"
	"github.com/Dysin/cross-border/pkg/config"
	"github.com/Dysin/cross-border/pkg/logger"
)

func main() {
	scope := flag.String("scope", "sku", "scope del resumen tabular: sku, order o period")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("currency", cfg.Analysis.Currency).
		Msg("iniciando análisis de rentabilidad")

	loc, err := time.LoadLocation(cfg.Analysis.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Analysis.Timezone).Msg("zona horaria inválida")
	}
	granularity, err := parseGranularity(cfg.Analysis.Granularity)
	if err != nil {
		log.Fatal().Err(err).Msg("granularidad inválida")
	}
	tableScope, err := parseScope(*scope)
	if err != nil {
		log.Fatal().Err(err).Msg("scope inválido")
	}

	ds, err := csvload.LoadDataset(cfg.Data.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Data.Dir).Msg("cargar dataset")
	}
	table, err := rates.LoadCSV(cfg.Rates.CSVPath, cfg.Rates.Base)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Rates.CSVPath).
			Msg("cargar tabla de tasas (ejecute fetchrates primero)")
	}

	ctx := context.Background()
	p := pipeline.New(log, table.Lookup)
	result, err := p.Run(ctx, ds, pipeline.Options{
		Currency:    cfg.Analysis.Currency,
		Granularity: granularity,
		Location:    loc,
	})
	if err != nil {
		// Corrida fallida: ningún artefacto se emite.
		log.Fatal().Err(err).Msg("corrida abortada")
	}

	builder := report.NewBuilder(cfg.Analysis.Currency)
	records := map[profit.Scope][]profit.ProfitRecord{
		profit.ScopeSKU:    result.BySKU,
		profit.ScopeOrder:  result.ByOrder,
		profit.ScopePeriod: result.ByPeriod,
	}[tableScope]
	summary := builder.BuildTable(tableScope, records)
	fmt.Print(builder.Text(summary))

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("crear directorio de salida")
	}

	// PDF del resumen + métricas CAC.
	generator := pdf.NewSummaryGenerator()
	doc, err := generator.Generate(pdf.RunMeta{
		RunID:       result.RunID,
		GeneratedAt: time.Now(),
		Currency:    cfg.Analysis.Currency,
	}, summary, builder.BuildCAC(result.CAC))
	if err != nil {
		log.Fatal().Err(err).Msg("generar PDF")
	}
	pdfPath := filepath.Join(cfg.Output.Dir, "summary_"+result.RunID+".pdf")
	if err := os.WriteFile(pdfPath, doc, 0o644); err != nil {
		log.Fatal().Err(err).Msg("escribir PDF")
	}

	// PNG de la serie de utilidad neta por período.
	series := builder.BuildSeries(result.ByPeriod)
	png, err := chart.NewRenderer().RenderNetProfit(series, cfg.Analysis.Currency)
	if err != nil {
		log.Fatal().Err(err).Msg("generar gráfico")
	}
	pngPath := filepath.Join(cfg.Output.Dir, "net_profit_"+result.RunID+".png")
	if err := os.WriteFile(pngPath, png, 0o644); err != nil {
		log.Fatal().Err(err).Msg("escribir gráfico")
	}

	log.Info().
		Str("run_id", result.RunID).
		Str("pdf", pdfPath).
		Str("png", pngPath).
		Strs("inapplicable", result.Inapplicable).
		Msg("análisis completado")
}

func parseGranularity(s string) (profit.Granularity, error) {
	switch s {
	case "day":
		return profit.Daily, nil
	case "week":
		return profit.Weekly, nil
	case "month":
		return profit.Monthly, nil
	default:
		return "", fmt.Errorf("granularidad %q (use day, week o month)", s)
	}
}

func parseScope(s string) (profit.Scope, error) {
	switch s {
	case "sku":
		return profit.ScopeSKU, nil
	case "order":
		return profit.ScopeOrder, nil
	case "period":
		return profit.ScopePeriod, nil
	default:
		return "", fmt.Errorf("scope %q (use sku, order o period)", s)
	}
}
