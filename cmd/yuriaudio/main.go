package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	// 容器镜像里可能没有 zoneinfo；内置一份保证 Asia/Shanghai 可解析。
	_ "time/tzdata"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var ee *exitError
		if !errors.As(err, &ee) && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitError 让子命令在已经输出结果之后仍能返回非零退出码。
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}
