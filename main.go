package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kenta/hondana/internal/app"
)

func main() {
	// ローカル開発用の.envを読み込む（存在しない場合は無視）
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		// ログのフラッシュを待ってから終了する
		time.Sleep(100 * time.Millisecond)
		os.Exit(1)
	}
}
