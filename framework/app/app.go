package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/fixkme/zleep/mlog"
)

// 节点全局状态
const (
	AppStateNone = iota // 未开始或已停止
	AppStateInit        // 正在初始化中
	AppStateRun         // 正在运行中
	AppStateStop        // 正在停止中
)

type Module interface {
	OnInit() error // 初始化
	Destroy()      // 销毁, 需要让Run返回
	Run()          // 启动, 阻塞
	Name() string  // 名字
}

// App 按注册顺序初始化和启动模块, 逆序销毁
type App struct {
	mods  []Module
	state int32
	stop  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

func New() *App {
	return &App{stop: make(chan struct{})}
}

func (app *App) setState(s int32) {
	atomic.StoreInt32(&app.state, s)
}

func (app *App) GetState() int32 {
	return atomic.LoadInt32(&app.state)
}

func (app *App) start(mods ...Module) error {
	if app.GetState() != AppStateNone || len(app.mods) != 0 {
		return fmt.Errorf("app cannot start twice")
	}
	mlog.Info("app starting up")
	app.setState(AppStateInit)
	for i, m := range mods {
		if err := m.OnInit(); err != nil {
			// 已初始化的模块逆序销毁
			for j := i - 1; j >= 0; j-- {
				destroy(mods[j])
			}
			app.setState(AppStateNone)
			return fmt.Errorf("module %s init error: %w", m.Name(), err)
		}
		app.mods = append(app.mods, m)
	}
	for _, m := range app.mods {
		app.wg.Add(1)
		go func(m Module) {
			defer app.wg.Done()
			m.Run()
		}(m)
	}
	app.setState(AppStateRun)
	mlog.Info("app started")
	return nil
}

func (app *App) shutdown() {
	mlog.Info("app stop begin")
	app.setState(AppStateStop)
	// 先进后出
	for i := len(app.mods) - 1; i >= 0; i-- {
		m := app.mods[i]
		mlog.Infof("app stop module %s", m.Name())
		destroy(m)
	}
	app.wg.Wait()
	app.setState(AppStateNone)
	mlog.Info("app stopped")
}

func destroy(m Module) {
	defer func() {
		if r := recover(); r != nil {
			mlog.Errorf("%s module destroy panic: %v\n%s", m.Name(), r, debug.Stack())
		}
	}()
	m.Destroy()
}

// Run 启动模块并阻塞, 直到收到SIGINT/SIGTERM、ctx结束或调用Stop
func (app *App) Run(ctx context.Context, mods ...Module) error {
	if err := app.start(mods...); err != nil {
		return err
	}
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		mlog.Infof("server closing down (signal: %v)", s)
	case <-ctx.Done():
		mlog.Infof("server closing down (%v)", ctx.Err())
	case <-app.stop:
	}
	app.shutdown()
	return nil
}

func (app *App) Stop() {
	app.once.Do(func() {
		close(app.stop)
	})
}
