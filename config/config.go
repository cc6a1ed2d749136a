package config

import (
	"os"
	"path"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DBConfig Database config
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// SysConfig System config
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig WEB Config
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LogConfig Logger config
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// JobsConfig maintenance job schedules and sinks. Cron expressions accept an
// optional seconds field and descriptors such as @every 5m.
type JobsConfig struct {
	Enabled            bool   `yaml:"enabled"`
	RestockCron        string `yaml:"restock_cron"`
	RestockThreshold   int    `yaml:"restock_threshold"`
	RestockIncrement   int    `yaml:"restock_increment"`
	ReportCron         string `yaml:"report_cron"`
	ReminderCron       string `yaml:"reminder_cron"`
	ReminderWindowDays int    `yaml:"reminder_window_days"`
	HeartbeatCron      string `yaml:"heartbeat_cron"`
	RestockLog         string `yaml:"restock_log"`
	ReportLog          string `yaml:"report_log"`
	ReminderLog        string `yaml:"reminder_log"`
	HeartbeatLog       string `yaml:"heartbeat_log"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system"`
	Web      WebConfig  `yaml:"web"`
	Database DBConfig   `yaml:"database"`
	Logger   LogConfig  `yaml:"logger"`
	Jobs     JobsConfig `yaml:"jobs"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

// InitDirs creates the working directories
func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "ToughCRM",
		Location: "Local",
		Workdir:  "/var/toughcrm",
		Debug:    true,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 8000,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "toughcrm",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/toughcrm/logs/toughcrm.log",
	},
	Jobs: JobsConfig{
		Enabled:            true,
		RestockCron:        "0 */12 * * *",
		RestockThreshold:   10,
		RestockIncrement:   10,
		ReportCron:         "0 6 * * mon",
		ReminderCron:       "0 8 * * *",
		ReminderWindowDays: 7,
		HeartbeatCron:      "*/5 * * * *",
		RestockLog:         "/tmp/low_stock_updates_log.txt",
		ReportLog:          "/tmp/crm_report_log.txt",
		ReminderLog:        "/tmp/order_reminders_log.txt",
		HeartbeatLog:       "/tmp/crm_heartbeat_log.txt",
	},
}

// LoadConfig reads cfile over the defaults, then applies TOUGHCRM_*
// environment overrides. An empty or missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := *DefaultAppConfig
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				zap.S().Errorf("load config %s error: %s", cfile, err.Error())
			}
		case os.IsNotExist(err):
			zap.S().Warnf("config file %s not found, use default config", cfile)
		default:
			zap.S().Errorf("read config %s error: %s", cfile, err.Error())
		}
	}
	applyEnv(&cfg)
	return &cfg
}

func setEnvValue(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToBool(strings.ToLower(v))
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("TOUGHCRM_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("TOUGHCRM_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("TOUGHCRM_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("TOUGHCRM_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("TOUGHCRM_WEB_PORT", &cfg.Web.Port)

	setEnvValue("TOUGHCRM_DB_TYPE", &cfg.Database.Type)
	setEnvValue("TOUGHCRM_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("TOUGHCRM_DB_PORT", &cfg.Database.Port)
	setEnvValue("TOUGHCRM_DB_NAME", &cfg.Database.Name)
	setEnvValue("TOUGHCRM_DB_USER", &cfg.Database.User)
	setEnvValue("TOUGHCRM_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("TOUGHCRM_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("TOUGHCRM_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("TOUGHCRM_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	setEnvBoolValue("TOUGHCRM_JOBS_ENABLED", &cfg.Jobs.Enabled)
	setEnvIntValue("TOUGHCRM_RESTOCK_THRESHOLD", &cfg.Jobs.RestockThreshold)
	setEnvIntValue("TOUGHCRM_RESTOCK_INCREMENT", &cfg.Jobs.RestockIncrement)
	setEnvIntValue("TOUGHCRM_REMINDER_WINDOW_DAYS", &cfg.Jobs.ReminderWindowDays)
}
