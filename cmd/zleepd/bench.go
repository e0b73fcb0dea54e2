package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/urfave/cli"

	"github.com/fixkme/zleep/clock"
	"github.com/fixkme/zleep/framework/config"
	"github.com/fixkme/zleep/zleep"
)

var (
	benchWaiters int
	benchSpread  float64

	benchFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "json config file",
			Destination: &configFile,
		},
		cli.IntFlag{
			Name:        "waiters, n",
			Usage:       "number of waiters",
			Value:       1000,
			Destination: &benchWaiters,
		},
		cli.Float64Flag{
			Name:        "spread",
			Usage:       "deadlines are spread over this many seconds",
			Value:       2,
			Destination: &benchSpread,
		},
	}
)

type benchResult struct {
	fired      int
	violations int
	minLate    float64 // 负数表示提前, 最多提前一个tick
	maxLate    float64
	sumLate    float64
}

func bench(ctx *cli.Context) error {
	stop, err := setup(configFile)
	if err != nil {
		return err
	}
	defer stop()

	h := newHost(config.Config)
	h.Start()
	defer h.Close()
	s := zleep.New(h, clock.Default)

	res, err := runBench(s, benchWaiters, benchSpread)
	if err != nil {
		return err
	}
	st := s.Stats()
	fmt.Printf("waiters=%d fired=%d order_violations=%d late_avg=%.4fs late_min=%.4fs late_max=%.4fs loop_starts=%d host_ticks=%d\n",
		benchWaiters, res.fired, res.violations, res.sumLate/math.Max(1, float64(res.fired)), res.minLate, res.maxLate,
		st.LoopStarts, h.CurrentTick())
	return nil
}

// runBench 回调都在宿主协程执行, 记录的顺序就是触发顺序
func runBench(s *zleep.Sleeper, n int, spread float64) (*benchResult, error) {
	c := s.Clock()
	res := &benchResult{minLate: math.Inf(1), maxLate: math.Inf(-1)}
	last := math.Inf(-1)
	wg := &sync.WaitGroup{}
	base := c.Now()
	for i := 0; i < n; i++ {
		target := base + rand.Float64()*spread
		wg.Add(1)
		_, err := s.At(target, func() {
			defer wg.Done()
			res.fired++
			if target < last {
				res.violations++
			}
			last = target
			late := c.Now() - target
			res.sumLate += late
			res.minLate = math.Min(res.minLate, late)
			res.maxLate = math.Max(res.maxLate, late)
		})
		if err != nil {
			return nil, err
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	timeout := time.Duration(spread*float64(time.Second)) + 5*time.Second
	select {
	case <-done:
	case <-time.After(timeout):
		return nil, context.DeadlineExceeded
	}
	return res, nil
}
