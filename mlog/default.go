package mlog

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 10
	defaultBuffSize   = 0x10000
)

// fileLogger 日志先进buff, 由单独协程落盘
type fileLogger struct {
	out   *lumberjack.Logger
	ll    *log.Logger
	buff  chan string
	level Level
}

func newDefaultLogger(logpath, logName string, level Level, stdOut bool) (*fileLogger, error) {
	// 默认使用当前路径
	if len(logpath) == 0 {
		logpath = "."
	}
	if err := os.MkdirAll(logpath, 0755); err != nil {
		return nil, err
	}
	out := &lumberjack.Logger{
		Filename:   filepath.Join(logpath, genLogName(logName)),
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		LocalTime:  true,
	}
	var w io.Writer = out
	if stdOut {
		w = io.MultiWriter(out, os.Stdout)
	}
	return &fileLogger{
		out:   out,
		ll:    log.New(w, "", log.Ldate|log.Lmicroseconds),
		buff:  make(chan string, defaultBuffSize),
		level: level,
	}, nil
}

func (me *fileLogger) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("mlog recover error %v\n", r)
			}
			me.out.Close()
			wg.Done()
		}()

		for {
			select {
			case <-ctx.Done():
				// 退出前把剩余日志写完
				for {
					select {
					case str := <-me.buff:
						me.ll.Println(str)
					default:
						return
					}
				}
			case str := <-me.buff:
				me.ll.Println(str)
			}
		}
	}()
}

func (me *fileLogger) push(level Level, s string) {
	me.buff <- getLevelTag(level) + s
}

func (me *fileLogger) Logf(level Level, format string, args ...any) {
	if !me.IsLevelEnabled(level) {
		return
	}
	if len(format) == 0 {
		me.push(level, fmt.Sprint(args...))
	} else {
		me.push(level, fmt.Sprintf(format, args...))
	}
}

func (me *fileLogger) Trace(args ...any) { me.Logf(TraceLevel, "", args...) }
func (me *fileLogger) Tracef(format string, args ...any) { me.Logf(TraceLevel, format, args...) }
func (me *fileLogger) Debug(args ...any) { me.Logf(DebugLevel, "", args...) }
func (me *fileLogger) Debugf(format string, args ...any) { me.Logf(DebugLevel, format, args...) }
func (me *fileLogger) Info(args ...any) { me.Logf(InfoLevel, "", args...) }
func (me *fileLogger) Infof(format string, args ...any) { me.Logf(InfoLevel, format, args...) }
func (me *fileLogger) Notice(args ...any) { me.Logf(NoticeLevel, "", args...) }
func (me *fileLogger) Noticef(format string, args ...any) {
	me.Logf(NoticeLevel, format, args...)
}
func (me *fileLogger) Warn(args ...any) { me.Logf(WarnLevel, "", args...) }
func (me *fileLogger) Warnf(format string, args ...any) { me.Logf(WarnLevel, format, args...) }
func (me *fileLogger) Error(args ...any) { me.Logf(ErrorLevel, "", args...) }
func (me *fileLogger) Errorf(format string, args ...any) { me.Logf(ErrorLevel, format, args...) }

func (me *fileLogger) Fatal(args ...any) {
	if me.IsLevelEnabled(FatalLevel) {
		me.push(FatalLevel, fmt.Sprint(args...))
		time.Sleep(time.Second)
		os.Exit(1)
	}
}

func (me *fileLogger) Fatalf(format string, args ...any) {
	if me.IsLevelEnabled(FatalLevel) {
		me.push(FatalLevel, fmt.Sprintf(format, args...))
		time.Sleep(time.Second)
		os.Exit(1)
	}
}

func (me *fileLogger) IsLevelEnabled(level Level) bool {
	return me.level >= level
}

func genLogName(logName string) string {
	if logName == "" {
		logName = "zleep"
	}
	return logName + ".log"
}
