package main

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/urfave/cli"

	"github.com/fixkme/zleep/clock"
	"github.com/fixkme/zleep/framework/app"
	"github.com/fixkme/zleep/framework/config"
	"github.com/fixkme/zleep/host"
	"github.com/fixkme/zleep/mlog"
	"github.com/fixkme/zleep/zleep"
)

var (
	configFile    string
	demoWaiters   int
	demoMaxSecs   float64
	statsInterval time.Duration

	runFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "json config file",
			Destination: &configFile,
		},
		cli.IntFlag{
			Name:        "waiters, n",
			Usage:       "number of demo sleepers",
			Value:       8,
			Destination: &demoWaiters,
		},
		cli.Float64Flag{
			Name:        "max-seconds",
			Usage:       "upper bound of a single demo sleep",
			Value:       3,
			Destination: &demoMaxSecs,
		},
		cli.DurationFlag{
			Name:        "stats-interval",
			Usage:       "how often to log sleeper stats",
			Value:       5 * time.Second,
			Destination: &statsInterval,
		},
	}
)

func run(ctx *cli.Context) error {
	stop, err := setup(configFile)
	if err != nil {
		return err
	}
	defer stop()

	hm := &hostModule{conf: config.Config}
	dm := &demoModule{host: hm, waiters: demoWaiters, maxSecs: demoMaxSecs, interval: statsInterval}
	return app.New().Run(context.Background(), hm, dm)
}

type hostModule struct {
	conf *config.AppConfig
	h    *host.Scheduler
}

func (m *hostModule) Name() string { return "host" }

func (m *hostModule) OnInit() error {
	m.h = newHost(m.conf)
	return nil
}

func (m *hostModule) Run() {
	m.h.Run()
}

func (m *hostModule) Destroy() {
	m.h.Close()
}

// demoModule 若干协程循环随机睡眠, 统计晚到时间
type demoModule struct {
	host     *hostModule
	waiters  int
	maxSecs  float64
	interval time.Duration

	s      *zleep.Sleeper
	ctx    context.Context
	cancel context.CancelFunc
}

func (m *demoModule) Name() string { return "demo" }

func (m *demoModule) OnInit() error {
	m.s = zleep.New(m.host.h, clock.Default)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return nil
}

func (m *demoModule) Destroy() {
	m.cancel()
}

func (m *demoModule) Run() {
	wg := &sync.WaitGroup{}
	for i := 0; i < m.waiters; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			m.sleepLoop(id)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.reportLoop()
	}()
	wg.Wait()
}

func (m *demoModule) sleepLoop(id int) {
	r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
	c := m.s.Clock()
	for {
		var err error
		start := c.Now()
		if r.Intn(2) == 0 {
			ticks := 1 + r.Intn(40)
			err = m.s.SleepTicks(m.ctx, ticks)
			if err == nil {
				mlog.Debugf("sleeper %d woke after %d ticks (%.3fs)", id, ticks, c.Now()-start)
			}
		} else {
			secs := r.Float64() * m.maxSecs
			err = m.s.SleepSeconds(m.ctx, secs)
			if err == nil {
				mlog.Debugf("sleeper %d woke after %.3fs, late %.3fs", id, secs, c.Now()-start-secs)
			}
		}
		if err != nil {
			if m.ctx.Err() == nil {
				mlog.Warnf("sleeper %d stopped: %v", id, err)
			}
			return
		}
	}
}

func (m *demoModule) reportLoop() {
	for m.s.SleepDuration(m.ctx, m.interval) == nil {
		st := m.s.Stats()
		mlog.Infof("zleep stats: loop_starts=%d running=%v pending=%d fired=%d cancelled=%d host_tick=%d host_tasks=%d",
			st.LoopStarts, st.Running, st.Pending, st.Fired, st.Cancelled, m.host.h.CurrentTick(), m.host.h.PendingTasks())
	}
}
