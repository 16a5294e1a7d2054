package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde
// env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	Analysis AnalysisConfig
	Data     DataConfig
	Rates    RatesConfig
	Output   OutputConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, production
	Name string
}

// AnalysisConfig parámetros de la corrida de análisis.
type AnalysisConfig struct {
	Currency    string // moneda objetivo de los reportes
	Granularity string // day, week, month
	Timezone    string // calendario de las ventanas, ej. Asia/Shanghai
}

// DataConfig ubicación de los CSV de entrada.
type DataConfig struct {
	Dir string
}

// RatesConfig colaborador de tasas de cambio.
// Si CSVPath existe se usa la tabla local; la API solo se consulta desde
// el binario fetchrates.
type RatesConfig struct {
	CSVPath string
	APIKey  string // ExchangeRate-API, https://www.exchangerate-api.com/
	Base    string // moneda base de la tabla, ej. CNY
}

// OutputConfig destino de los artefactos (PDF, PNG).
type OutputConfig struct {
	Dir string
}

// Load lee la configuración desde variables de entorno (y opcionalmente
// desde archivo). Las env vars tienen prioridad. Nombres esperados:
// APP_ENV, ANALYSIS_CURRENCY, DATA_DIR, RATES_CSV_PATH, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "cross-border"),
		},
		Analysis: AnalysisConfig{
			Currency:    getString(v, "ANALYSIS_CURRENCY", "USD"),
			Granularity: getString(v, "ANALYSIS_GRANULARITY", "month"),
			Timezone:    getString(v, "ANALYSIS_TIMEZONE", "UTC"),
		},
		Data: DataConfig{
			Dir: getString(v, "DATA_DIR", "./data"),
		},
		Rates: RatesConfig{
			CSVPath: getString(v, "RATES_CSV_PATH", "./data/exchange_rates.csv"),
			APIKey:  getString(v, "EXCHANGE_RATE_API_KEY", ""),
			Base:    getString(v, "RATES_BASE", "CNY"),
		},
		Output: OutputConfig{
			Dir: getString(v, "OUTPUT_DIR", "./out"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
