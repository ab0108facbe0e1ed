package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTerminal(os.Stderr) {
		return os.Stderr, true
	}
	return nil, false
}
