package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/fixkme/zleep/errs"
	"github.com/fixkme/zleep/mlog"
)

var Config *AppConfig

type AppConfig struct {
	TicksPerSecond int   `json:"ticks_per_second" mapstructure:"ticks_per_second"` //宿主每秒tick数
	HostQueueSize  int   `json:"host_queue_size" mapstructure:"host_queue_size"`   //投递到宿主协程的队列上限
	TimeOffsetMs   int64 `json:"time_offset_ms" mapstructure:"time_offset_ms"`     //时间偏移 毫秒
	LogConfig      `json:",inline" mapstructure:",inline"`
	IsDebug        bool `json:"is_debug" mapstructure:"is_debug"`
}

type LogConfig struct {
	LogPath   string `json:"log_path" mapstructure:"log_path"`
	LogName   string `json:"log_name" mapstructure:"log_name"`
	LogLevel  string `json:"log_level" mapstructure:"log_level"`
	LogStdOut bool   `json:"log_std_out" mapstructure:"log_std_out"`
}

func Default() *AppConfig {
	return &AppConfig{
		TicksPerSecond: 20,
		HostQueueSize:  1024,
		LogConfig: LogConfig{
			LogName:   "zleep",
			LogLevel:  "info",
			LogStdOut: true,
		},
	}
}

// LoadConfig 先读文件再用环境变量覆盖, configFile为空时只用默认值+环境变量
func LoadConfig(configFile string, loadConfigFromEnv func(*AppConfig) error) error {
	conf := Default()
	if len(configFile) != 0 {
		if err := loadConfigFromFile(configFile, conf); err != nil {
			return err
		}
	}
	if loadConfigFromEnv != nil {
		if err := loadConfigFromEnv(conf); err != nil {
			return err
		}
	}
	if err := conf.Validate(); err != nil {
		return err
	}
	Config = conf
	return nil
}

func loadConfigFromFile(configFile string, conf *AppConfig) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, conf)
}

func (conf *AppConfig) Validate() error {
	if conf.TicksPerSecond <= 0 || conf.TicksPerSecond > 1000 {
		return errs.InvalidConfig.Printf("ticks_per_second %d out of range (0,1000]", conf.TicksPerSecond)
	}
	if conf.HostQueueSize < 0 {
		return errs.InvalidConfig.Printf("host_queue_size %d", conf.HostQueueSize)
	}
	if _, ok := mlog.ParseLevel(conf.LogLevel); !ok && conf.LogLevel != "" {
		return errs.InvalidConfig.Printf("log_level %q", conf.LogLevel)
	}
	return nil
}

func (conf *AppConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(conf.TicksPerSecond)
}

func (conf *AppConfig) TimeOffset() time.Duration {
	return time.Duration(conf.TimeOffsetMs) * time.Millisecond
}

func (conf *AppConfig) Level() mlog.Level {
	lv, _ := mlog.ParseLevel(conf.LogLevel)
	if conf.IsDebug && lv < mlog.DebugLevel {
		lv = mlog.DebugLevel
	}
	return lv
}

func (conf *AppConfig) JsonFormat() string {
	if conf == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
