package main

import (
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/fixkme/zleep/clock"
	"github.com/fixkme/zleep/framework/config"
	"github.com/fixkme/zleep/host"
	"github.com/fixkme/zleep/mlog"
)

func loadConfigFromEnv(c *config.AppConfig) error {
	if v := os.Getenv("ZLEEP_TICKS_PER_SECOND"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.TicksPerSecond = n
	}
	if v := os.Getenv("ZLEEP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ZLEEP_LOG_PATH"); v != "" {
		c.LogPath = v
	}
	return nil
}

// setup 读配置并初始化日志和时钟, 返回的stop用于等日志落盘
func setup(configFile string) (stop func(), err error) {
	if err = config.LoadConfig(configFile, loadConfigFromEnv); err != nil {
		return nil, err
	}
	conf := config.Config
	stop = func() {}
	if conf.LogPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		wg := &sync.WaitGroup{}
		if err = mlog.UseDefaultLogger(ctx, wg, conf.LogPath, conf.LogName, conf.Level(), conf.LogStdOut); err != nil {
			cancel()
			return nil, err
		}
		stop = func() {
			cancel()
			wg.Wait()
		}
	} else {
		mlog.UseStdLogger(conf.Level())
	}
	clock.Default.SetOffset(conf.TimeOffset())
	mlog.Debugf("config: %s", conf.JsonFormat())
	return stop, nil
}

func newHost(conf *config.AppConfig) *host.Scheduler {
	return host.New(&host.Options{
		TickDuration: conf.TickDuration(),
		QueueSize:    conf.HostQueueSize,
	})
}
