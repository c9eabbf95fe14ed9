package backend

import (
	"errors"
	"fmt"

	"fintrack/internal/config"
	gsheet "fintrack/internal/sheets/google"
)

const defaultCacheSize = 32

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleCredentials:   GoogleCredentials(appConfig),

		DataDirectory: appConfig.DataDir,

		CacheTTL:  appConfig.SheetsCacheTTL,
		CacheSize: defaultCacheSize,
	}, nil
}

// GoogleCredentials picks the credential sources out of the app config.
func GoogleCredentials(appConfig *config.Config) gsheet.Credentials {
	return gsheet.Credentials{
		JSON:    appConfig.GoogleServiceAccountJSON,
		File:    appConfig.GoogleServiceAccountFile,
		ADCFile: appConfig.GoogleApplicationCredFile,
	}
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
		creds := c.GoogleCredentials
		if creds.JSON == "" && creds.File == "" && creds.ADCFile == "" {
			return errors.New("service account credentials are required for sheets backend")
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("invalid cache TTL: %v", c.CacheTTL)
	}
	return nil
}

func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, SheetsBackend, MemoryBackend}
}
