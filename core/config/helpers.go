package config

import (
	"strings"

	"github.com/spf13/viper"
)

func init() {
	viper.AutomaticEnv()
}

// GetAllSettings returns a map of the dynamic settings currently loaded in
// memory, for the diagnostics endpoint.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_debug":               Global.App.Debug,
		"app_version":             Global.App.Version,
		"scheduler_enabled":       Global.Scheduler.Enabled,
		"scheduler_tick_seconds":  Global.Scheduler.TickSeconds,
		"scheduler_timezone":      Global.Scheduler.Timezone,
		"ai_provider":             Global.AI.Provider,
		"ai_model":                Global.AI.Model,
		"ai_transcription_model":  Global.AI.TranscriptionModel,
		"worker_pool_size":        Global.WorkerPool.Size,
		"worker_pool_queue_size":  Global.WorkerPool.QueueSize,
		"linkedin_configured":     Global.LinkedIn.ClientID != "",
		"threads_configured":      Global.Threads.AppID != "",
		"jira_configured":         Global.Jira.BaseURL != "",
		"stock_images_configured": Global.StockImages.UnsplashAccessKey != "" || Global.StockImages.PexelsAPIKey != "" || Global.StockImages.PixabayAPIKey != "",
	}
}

// Helpers. Values resolve through viper so the environment, a bound config
// file, or an explicit viper.Set all take effect.
func getEnv(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if !viper.IsSet(key) {
		return fallback
	}
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if !viper.IsSet(key) {
		return fallback
	}
	if v := viper.GetInt64(key); v != 0 {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if !viper.IsSet(key) {
		return fallback
	}
	v := strings.ToLower(viper.GetString(key))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
