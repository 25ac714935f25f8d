// qlang — инструмент командной строки для построения, симуляции и
// экспорта квантовых схем из реестра параметризованных вентилей.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	// Регистрация сумматоров в глобальном реестре вентилей
	_ "github.com/fillay12321/qlang/classarith"
	_ "github.com/fillay12321/qlang/qftarith"
)

// Версия инструмента, подставляется при сборке
var version = "0.2.0"

func main() {
	app := &cli.App{
		Name:    "qlang",
		Usage:   "построение, симуляция и экспорт квантовых схем",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "путь к TOML-файлу конфигурации",
			},
			&cli.StringFlag{
				Name:  "verbosity",
				Usage: "уровень логирования (debug|info|warn|error)",
			},
			&cli.IntFlag{
				Name:  "max-qubits",
				Usage: "ограничение ширины симулируемых схем (0 — по доступной памяти)",
			},
		},
		Commands: []*cli.Command{
			tableCommand,
			qasmCommand,
			verifyCommand,
			runCommand,
			envCommand,
		},
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("ошибка: %v", err))
		os.Exit(1)
	}
}

// setup загружает конфигурацию и создает логгер с учетом флагов
func setup(ctx *cli.Context) (*Config, *zap.SugaredLogger, error) {
	cfg, err := loadConfig(ctx.String("config"))
	if err != nil {
		return nil, nil, err
	}

	if ctx.IsSet("verbosity") {
		cfg.Verbosity = ctx.String("verbosity")
	}
	if ctx.IsSet("max-qubits") {
		cfg.MaxQubits = ctx.Int("max-qubits")
	}

	logger, err := newLogger(cfg.Verbosity)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

// newLogger создает консольный логгер zap, пишущий в stderr
// с поддержкой цветов Windows-терминалов
func newLogger(verbosity string) (*zap.SugaredLogger, error) {
	var level zapcore.Level
	switch verbosity {
	case "debug":
		level = zapcore.DebugLevel
	case "", "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("неизвестный уровень логирования: %q", verbosity)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	if isatty.IsTerminal(os.Stderr.Fd()) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(colorable.NewColorableStderr()),
		level,
	)

	return zap.New(core).Sugar(), nil
}
