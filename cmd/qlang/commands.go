package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fillay12321/qlang/internal/hwinfo"
	"github.com/fillay12321/qlang/internal/profile"
	"github.com/fillay12321/qlang/lang"
	"github.com/fillay12321/qlang/qasm"
	"github.com/fillay12321/qlang/sim"
	"github.com/fillay12321/qlang/toffoli"
)

var tableCommand = &cli.Command{
	Name:  "table",
	Usage: "вывести таблицу истинности зарегистрированного вентиля",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "gate", Value: "TOFF.DAC", Usage: "имя вентиля в реестре"},
		&cli.IntFlag{Name: "n", Value: 4, Usage: "целочисленный параметр вентиля"},
	},
	Action: tableAction,
}

var qasmCommand = &cli.Command{
	Name:  "qasm",
	Usage: "экспортировать вентиль в OpenQASM 2.0",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "gate", Value: "TOFF.DAC", Usage: "имя вентиля в реестре"},
		&cli.IntFlag{Name: "n", Value: 4, Usage: "целочисленный параметр вентиля"},
		&cli.StringFlag{Name: "out", Usage: "файл вывода (по умолчанию stdout)"},
	},
	Action: qasmAction,
}

var verifyCommand = &cli.Command{
	Name:  "verify",
	Usage: "проверить эквивалентность прямой и декомпозированной реализаций Тоффоли",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "from", Value: 3, Usage: "минимальное количество проводов"},
		&cli.IntFlag{Name: "to", Value: 8, Usage: "максимальное количество проводов"},
		&cli.BoolFlag{Name: "profile", Usage: "вывести статистику применений вентилей"},
	},
	Action: verifyAction,
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "исполнить схему из YAML-описания",
	ArgsUsage: "<circuit.yaml>",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "input", Usage: "базисное состояние на входе"},
	},
	Action: runAction,
}

var envCommand = &cli.Command{
	Name:   "env",
	Usage:  "показать аппаратные ресурсы и предельный размер симуляции",
	Action: envAction,
}

// buildProgram строит и разворачивает вентиль из реестра,
// проверяя ширину схемы по конфигурации и доступной памяти
func buildProgram(gateName string, n int, cfg *Config, logger *zap.SugaredLogger) (*lang.Program, error) {
	gate, err := lang.Lookup(gateName)
	if err != nil {
		return nil, fmt.Errorf("%w (зарегистрированы: %v)", err, lang.RegisteredGates())
	}

	rout, err := gate.Build(n)
	if err != nil {
		return nil, err
	}

	prog, err := lang.Flatten(rout)
	if err != nil {
		return nil, err
	}

	limit := cfg.MaxQubits
	if limit <= 0 {
		limit = hwinfo.Detect().MaxQubits()
	}
	if limit > sim.MaxQubits {
		limit = sim.MaxQubits
	}
	if prog.Width > limit {
		return nil, fmt.Errorf("схеме %s требуется %d кубитов, предел %d",
			prog.Name, prog.Width, limit)
	}

	logger.Debugw("схема развернута",
		"gate", gateName, "n", n,
		"width", prog.Width, "gates", prog.GateCount(), "ancillae", prog.MaxAncillae)

	return prog, nil
}

func tableAction(ctx *cli.Context) error {
	cfg, logger, err := setup(ctx)
	if err != nil {
		return err
	}

	prog, err := buildProgram(ctx.String("gate"), ctx.Int("n"), cfg, logger)
	if err != nil {
		return err
	}

	table, err := sim.TruthTable(prog)
	if err != nil {
		return err
	}

	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Вход", "Биты входа", "Выход", "Биты выхода"})
	for input, output := range table {
		tw.Append([]string{
			fmt.Sprintf("%d", input),
			fmt.Sprintf("%0*b", prog.Arity, input),
			fmt.Sprintf("%d", output),
			fmt.Sprintf("%0*b", prog.Arity, output),
		})
	}
	tw.Render()

	return nil
}

func qasmAction(ctx *cli.Context) error {
	cfg, logger, err := setup(ctx)
	if err != nil {
		return err
	}

	prog, err := buildProgram(ctx.String("gate"), ctx.Int("n"), cfg, logger)
	if err != nil {
		return err
	}

	text, err := qasm.Emit(prog)
	if err != nil {
		return err
	}

	if out := ctx.String("out"); out != "" {
		return os.WriteFile(out, []byte(text), 0o644)
	}

	fmt.Print(text)

	return nil
}

func verifyAction(ctx *cli.Context) error {
	_, logger, err := setup(ctx)
	if err != nil {
		return err
	}

	from, to := ctx.Int("from"), ctx.Int("to")
	if from < 3 || to < from {
		return fmt.Errorf("недопустимый диапазон проверки: [%d, %d]", from, to)
	}

	failed := 0
	for n := from; n <= to; n++ {
		standard, err := toffoli.Standard(n)
		if err != nil {
			return err
		}
		dac, err := toffoli.DAC(n)
		if err != nil {
			return err
		}

		ok, err := sim.Equivalent(standard, dac)
		if err != nil {
			return err
		}

		if ok {
			fmt.Printf("n=%-3d %s\n", n, color.GreenString("OK"))
		} else {
			fmt.Printf("n=%-3d %s\n", n, color.RedString("FAIL"))
			failed++
		}
	}

	if ctx.Bool("profile") {
		if err := profileRun(to, logger); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("реализации расходятся для %d значений n", failed)
	}

	logger.Infow("реализации эквивалентны", "from", from, "to", to)

	return nil
}

// profileRun прогоняет декомпозированный Тоффоли на входе из всех единиц
// с подключенным профайлером и выводит статистику применений вентилей
func profileRun(n int, logger *zap.SugaredLogger) error {
	dac, err := toffoli.DAC(n)
	if err != nil {
		return err
	}
	prog, err := lang.Flatten(dac)
	if err != nil {
		return err
	}

	prof := profile.NewProfiler()
	s, err := sim.New(prog.Width, sim.WithProfiler(prof), sim.WithLogger(logger))
	if err != nil {
		return err
	}

	allOnes := (uint64(1) << (prog.Arity - 1)) - 1
	if err := s.RunProgram(prog, allOnes); err != nil {
		return err
	}

	prof.Report(logger)

	return nil
}

func runAction(ctx *cli.Context) error {
	cfg, logger, err := setup(ctx)
	if err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return fmt.Errorf("ожидается один аргумент: путь к YAML-описанию схемы")
	}

	f, err := os.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	prog, err := qasm.LoadYAML(f)
	if err != nil {
		return err
	}

	limit := cfg.MaxQubits
	if limit <= 0 {
		limit = hwinfo.Detect().MaxQubits()
	}
	if prog.Width > limit || prog.Width > sim.MaxQubits {
		return fmt.Errorf("схеме %s требуется %d кубитов, предел %d", prog.Name, prog.Width, limit)
	}

	s, err := sim.New(prog.Width, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	if err := s.RunProgram(prog, ctx.Uint64("input")); err != nil {
		return err
	}

	probs := s.Probabilities(cfg.Epsilon)
	basis := make([]uint64, 0, len(probs))
	for b := range probs {
		basis = append(basis, b)
	}
	sort.Slice(basis, func(i, j int) bool { return basis[i] < basis[j] })

	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Состояние", "Вероятность", "Амплитуда"})
	for _, b := range basis {
		amp, err := s.Amplitude(b)
		if err != nil {
			return err
		}
		tw.Append([]string{
			fmt.Sprintf("|%0*b⟩", prog.Width, b),
			fmt.Sprintf("%.6f", probs[b]),
			fmt.Sprintf("%.4g%+.4gi", real(amp), imag(amp)),
		})
	}
	tw.Render()

	return nil
}

func envAction(ctx *cli.Context) error {
	_, logger, err := setup(ctx)
	if err != nil {
		return err
	}

	info := hwinfo.Detect()
	maxQubits := info.MaxQubits()
	if maxQubits > sim.MaxQubits {
		maxQubits = sim.MaxQubits
	}

	fmt.Println(info.Description())
	fmt.Printf("предельный размер симуляции: %s кубитов\n", color.GreenString("%d", maxQubits))

	logger.Debugw("аппаратные ресурсы",
		"cores", info.CPUCores,
		"threads", info.CPUThreads,
		"mem_total", info.MemoryTotal,
		"mem_available", info.MemoryAvailable)

	return nil
}
