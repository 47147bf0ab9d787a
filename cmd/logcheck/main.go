// logcheck 向远程日志服务发送一条测试日志，用于检查地址和 token 是否可用
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"shorturl-go/internal/config"
	"shorturl-go/pkg/logsink"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	level := flag.String("level", "info", "log level")
	pkg := flag.String("package", "service", "log package")
	message := flag.String("message", "Logger test run from script", "log message")
	flag.Parse()

	os.Exit(run(*configFile, logsink.Level(*level), logsink.Package(*pkg), *message))
}

func run(configFile string, level logsink.Level, pkg logsink.Package, message string) int {
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FAIL", err)
		return 1
	}

	stack, err := logsink.ParseStack(cfg.LogSink.Stack)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FAIL", err)
		return 1
	}

	client := logsink.NewClient(logsink.Config{
		Endpoint: cfg.LogSink.Endpoint,
		Token:    cfg.LogSink.Token,
		Timeout:  cfg.LogSink.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LogSink.Timeout+time.Second)
	defer cancel()

	body, err := client.Log(ctx, stack, level, pkg, message)
	if err != nil {
		var reqErr *logsink.RequestError
		if errors.As(err, &reqErr) {
			raw, _ := json.Marshal(reqErr.Body)
			fmt.Fprintln(os.Stderr, "FAIL", reqErr.Status, string(raw))
		} else {
			fmt.Fprintln(os.Stderr, "FAIL", err)
		}
		return 1
	}

	raw, _ := json.Marshal(body)
	fmt.Println("OK", string(raw))
	return 0
}
