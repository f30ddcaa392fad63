// newsdesk はCMSバックエンドのエントリーポイント。
// サブコマンド（serve/worker/migrate/healthcheck）で起動モードを切り替える。
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hitoshi/newsdesk/internal/app"
)

func main() {
	// ローカル開発用に.envを読み込む。存在しない場合は無視する。
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "newsdesk: %v\n", err)
		os.Exit(1)
	}
}
