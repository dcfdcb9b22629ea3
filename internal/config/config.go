package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig application configuration
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Branding BrandingConfig `toml:"branding"`
	Auth     AuthConfig     `toml:"auth"`
	SMTP     SMTPConfig     `toml:"smtp"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig data directory settings
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// CatalogConfig option catalog workbook settings
type CatalogConfig struct {
	WorkbookPath string `toml:"workbook_path"`
	ListsSheet   string `toml:"lists_sheet"`
	BOMSheet     string `toml:"bom_sheet"`
	BOMHeaderRow int    `toml:"bom_header_row"`
}

// BrandingConfig branding assets embedded into generated documents
type BrandingConfig struct {
	LogoPath    string `toml:"logo_path"`
	CompanyName string `toml:"company_name"`
}

// AuthConfig admin credentials for the session gate
type AuthConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// SMTPConfig outbound mail settings
type SMTPConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Username      string `toml:"username"`
	Password      string `toml:"password"`
	From          string `toml:"from"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// LoadConfigInfo config load metadata
type LoadConfigInfo struct {
	PortSpecified bool
	FileMissing   bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20351,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Catalog: CatalogConfig{
			WorkbookPath: "ETE_Robotics-Bom-Data-for-softwares-development.xlsx",
			ListsSheet:   "Lists",
			BOMSheet:     "BOM",
			BOMHeaderRow: 12,
		},
		Branding: BrandingConfig{
			LogoPath:    "ETE-Robotics-Logo.png",
			CompanyName: "ETE Robotics Systems Integrator",
		},
		Auth: AuthConfig{
			Username: "admin",
			Password: "ete123",
		},
		SMTP: SMTPConfig{
			Host:          "localhost",
			Port:          587,
			From:          "rfq@ete-robotics.example",
			SubjectPrefix: "RFQ",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir returns the directory holding the executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo loads config.toml and returns load metadata.
// The file lives next to the executable; a missing file means defaults.
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			info.FileMissing = true
			applyEnvOverrides(config)
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	applyEnvOverrides(config)

	return config, info, nil
}

// applyEnvOverrides applies environment overrides used by E2E runs and
// deployments that keep secrets out of config.toml.
func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("RFQ_CATALOG_WORKBOOK"); v != "" {
		config.Catalog.WorkbookPath = v
	}
	if v := os.Getenv("RFQ_SMTP_HOST"); v != "" {
		config.SMTP.Host = v
	}
	if v := os.Getenv("RFQ_SMTP_PASSWORD"); v != "" {
		config.SMTP.Password = v
	}
	if v := os.Getenv("RFQ_ADMIN_PASSWORD"); v != "" {
		config.Auth.Password = v
	}
}

// SaveConfig writes the configuration back to config.toml.
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir creates the data directory next to the executable.
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := filepath.Join(exeDir, config.Data.DataDir)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"exports", "backups"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath builds a path inside the data directory.
func GetDataPath(config *AppConfig, subdir, filename string) string {
	exeDir, _ := GetExeDir()
	if exeDir == "" {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir, subdir, filename)
}
