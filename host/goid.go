package host

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
)

func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false) // 获取当前 goroutine 的调用栈
	id, err := parseGoroutineID(buf[:n])
	if err != nil {
		// 识别错了宿主协程, InLoop 会给出错误结果, 不能静默返回0
		panic(err)
	}
	return id
}

// parseGoroutineID 解析 "goroutine 18 [running]:" 形式的栈头
func parseGoroutineID(stack []byte) (int64, error) {
	rest, ok := bytes.CutPrefix(stack, []byte("goroutine "))
	if !ok {
		return 0, fmt.Errorf("host: unexpected stack header %q", stack)
	}
	if i := bytes.IndexByte(rest, ' '); i >= 0 {
		rest = rest[:i]
	}
	id, err := strconv.ParseInt(string(rest), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("host: bad goroutine id in %q", stack)
	}
	return id, nil
}
