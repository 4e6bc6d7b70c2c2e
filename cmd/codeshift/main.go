// Codeshift CLI — инструмент командной строки для загрузки проекта,
// запуска трансформации, деплоя и тестов через HTTP API.
//
// Использование:
//
//	codeshift [--api-url URL] [--json] <command> [flags]
//
// Команды:
//
//	upload     Загрузить каталог проекта
//	files      Просмотр, diff, выбор и правка файлов
//	transform  Трансформировать все файлы
//	rethink    Переработать выбранный файл
//	deploy     Задеплоить все файлы
//	test       Сгенерировать unit tests и тестовые артефакты
//	status     Прогресс и статус теста
//	logs       Логи деплоя
//	runs       История запусков
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Codeshift/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "codeshift",
		Short:         "Codeshift CLI — AI-assisted code transformation pipeline",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := "http://localhost:8080"
	if v := os.Getenv("CODESHIFT_API_URL"); v != "" {
		defaultURL = v
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewUploadCmd(clientFn, outputFn),
		cli.NewFilesCmd(clientFn, outputFn),
		cli.NewTransformCmd(clientFn, outputFn),
		cli.NewRethinkCmd(clientFn, outputFn),
		cli.NewDeployCmd(clientFn, outputFn),
		cli.NewTestCmd(clientFn, outputFn),
		cli.NewStatusCmd(clientFn, outputFn),
		cli.NewLogsCmd(clientFn, outputFn),
		cli.NewRunsCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
