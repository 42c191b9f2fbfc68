// Command chatctl 是 smart-chat-go 的运维命令行工具。
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
