package main

import (
	"errors"
	"fmt"
	"os"
)

// errRunHadErrors 表示报告已经输出、但存在条目级失败；
// main 据此只调整退出码，不再重复打印。
var errRunHadErrors = errors.New("run 存在失败条目")

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		if errors.Is(err, errRunHadErrors) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
