package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/osanhueza/fleetdesk/internal/pathutil"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Models     ModelsConfig     `koanf:"models"`
	Fleet      FleetConfig      `koanf:"fleet"`
	Prompts    PromptsConfig    `koanf:"prompts"`
	Store      StoreConfig      `koanf:"store"`
	Dispatcher DispatcherConfig `koanf:"dispatcher"`
}

type ServerConfig struct {
	LogLevel string `koanf:"log_level"`
}

type ModelsConfig struct {
	Default  string          `koanf:"default"`
	Smart    string          `koanf:"smart"`
	Fallback string          `koanf:"fallback"`
	Registry []ModelRegistry `koanf:"registry"`
}

type ModelRegistry struct {
	Name           string `koanf:"name"`
	Provider       string `koanf:"provider"`
	BaseURL        string `koanf:"base_url"`
	APIKey         string `koanf:"api_key"`
	RequestTimeout string `koanf:"request_timeout"`
}

// FleetConfig points at the fleet operations backend (vehicles, bookings,
// drivers, ratings, airport zones).
type FleetConfig struct {
	BaseURL      string        `koanf:"base_url"`
	APIToken     string        `koanf:"api_token"`
	Timeout      string        `koanf:"timeout"`
	BookingURL   string        `koanf:"booking_url"`
	AirportZones []AirportZone `koanf:"airport_zones"`
}

// AirportZone maps a city to its "zona iluminada" zone id.
type AirportZone struct {
	CityName string `koanf:"city_name"`
	ZoneID   int    `koanf:"zone_id"`
}

type PromptsConfig struct {
	System         string `koanf:"system"`
	CreateText     string `koanf:"create_text"`
	RatingsSummary string `koanf:"ratings_summary"`
}

type StoreConfig struct {
	Path         string `koanf:"path"`
	LockTimeout  string `koanf:"lock_timeout"`
	LockRetry    string `koanf:"lock_retry"`
	LockMaxRetry int    `koanf:"lock_max_retry"`
}

type DispatcherConfig struct {
	HistoryLimit int `koanf:"history_limit"`
	FrameBuffer  int `koanf:"frame_buffer"`
}

const (
	DefaultServerLogLevel = "info"

	DefaultModelDefault        = "mistral-large-latest"
	DefaultModelSmart          = "mistral-large-latest"
	DefaultModelFallback       = "claude-3-haiku"
	DefaultMistralBaseURL      = "https://api.mistral.ai/v1"
	DefaultOpenAIBaseURL       = "https://api.openai.com/v1"
	DefaultModelRequestTimeout = "120s"

	DefaultFleetTimeout    = "10s"
	DefaultFleetBaseURL    = "https://api.transvip.example/v1"
	DefaultFleetBookingURL = "https://www.transvip.cl/"

	DefaultStoreLockTimeout  = "30s"
	DefaultStoreLockRetry    = "100ms"
	DefaultStoreLockMaxRetry = 300

	DefaultDispatcherHistoryLimit = 40
	DefaultDispatcherFrameBuffer  = 16

	DefaultSystemPrompt = "Eres un asistente de operaciones de Transvip. Respondes en español, " +
		"con información precisa sobre vehículos, reservas, conductores y zonas iluminadas de aeropuerto. " +
		"Usa las herramientas disponibles cuando la pregunta requiera datos reales; si no, responde directamente."
	DefaultCreateTextPrompt = "Redacta el texto que solicita el usuario (normalmente un email, " +
		"a veces un whatsapp u otro mensaje). Tono profesional y cercano. Si se entrega un asunto, respétalo."
	DefaultRatingsSummaryPrompt = "Con el resumen de evaluaciones entregado, escribe un análisis breve " +
		"del desempeño del conductor en los últimos 90 días: nota promedio, distribución de calificaciones " +
		"y comentarios destacados, mencionando explícitamente las calificaciones bajas si existen."
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"server.log_level": DefaultServerLogLevel,
		"models.default":   DefaultModelDefault,
		"models.smart":     DefaultModelSmart,
		"models.fallback":  DefaultModelFallback,
		"models.registry": []ModelRegistry{
			{Name: DefaultModelDefault, Provider: "mistral", BaseURL: DefaultMistralBaseURL},
			{Name: DefaultModelFallback, Provider: "anthropic"},
		},
		"fleet.base_url":    DefaultFleetBaseURL,
		"fleet.booking_url": DefaultFleetBookingURL,
		"fleet.timeout":     DefaultFleetTimeout,
		"fleet.airport_zones": []AirportZone{
			{CityName: "Santiago", ZoneID: 1},
			{CityName: "Antofagasta", ZoneID: 2},
			{CityName: "Calama", ZoneID: 3},
			{CityName: "Concepción", ZoneID: 4},
		},
		"prompts.system":           DefaultSystemPrompt,
		"prompts.create_text":      DefaultCreateTextPrompt,
		"prompts.ratings_summary":  DefaultRatingsSummaryPrompt,
		"store.path":               filepath.Join(os.Getenv("HOME"), ".fleetdesk", "chats"),
		"store.lock_timeout":       DefaultStoreLockTimeout,
		"store.lock_retry":         DefaultStoreLockRetry,
		"store.lock_max_retry":     DefaultStoreLockMaxRetry,
		"dispatcher.history_limit": DefaultDispatcherHistoryLimit,
		"dispatcher.frame_buffer":  DefaultDispatcherFrameBuffer,
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	// Config File
	cfgPath := configFilePath(cmd)
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			if err := k.Load(file.Provider(cfgPath), yaml.Parser()); err != nil {
				return nil, err
			}
		} else if cmd != nil && cmd.Flags().Changed("config") {
			return nil, fmt.Errorf("config file not found: %s", cfgPath)
		} else {
			slog.Debug("Config file not found, using defaults", "path", cfgPath)
		}
	}

	// Environment (FLEETDESK_SERVER__LOG_LEVEL -> server.log_level)
	if err := k.Load(env.Provider("FLEETDESK_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "FLEETDESK_")
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	// Flags override everything
	if cmd != nil {
		if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	storePath, err := pathutil.Expand(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	cfg.Store.Path = storePath

	return &cfg, nil
}

func configFilePath(cmd *cobra.Command) string {
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil && flag.Value.String() != "" {
			expanded, err := pathutil.Expand(flag.Value.String())
			if err == nil && expanded != "" {
				return expanded
			}
			return flag.Value.String()
		}
	}
	home := os.Getenv("HOME")
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".fleetdesk", "config.yaml")
}

// ZoneForCity resolves the configured airport zone for a city, nil when the
// city has no zone.
func (c FleetConfig) ZoneForCity(city string) *AirportZone {
	for i := range c.AirportZones {
		if strings.EqualFold(c.AirportZones[i].CityName, strings.TrimSpace(city)) {
			return &c.AirportZones[i]
		}
	}
	return nil
}
