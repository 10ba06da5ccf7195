package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivlev/gesturewin/internal/config"
	"github.com/ivlev/gesturewin/internal/dataset"
	"github.com/ivlev/gesturewin/internal/engine"
	"github.com/ivlev/gesturewin/internal/ledger"
	"github.com/ivlev/gesturewin/internal/source"
	"github.com/ivlev/gesturewin/internal/system"
)

const usage = `использование: gesturewin <команда> [флаги]

команды:
  prepare   разбор аннотаций и файлов поз в оконные массивы .npy
  render    отрисовка каждого окна подготовленного датасета в PNG
  demo      подготовка первых последовательностей и их отрисовка за один запуск

флаги команды: "gesturewin <команда> -h"`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[!] .env: %v", err)
	}
	// Увеличиваем лимит открытых файлов для параллельной записи PNG
	system.InitResourceLimits()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "prepare":
		err = runPrepare(args)
	case "render":
		err = runRender(args)
	case "demo":
		err = runDemo(args)
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "неизвестная команда %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("[-] %s: %v", cmd, err)
	}
}

// loadConfig reads the optional YAML file and environment overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPath pre-scans args for -config so flag defaults can come from the file.
func configPath(args []string) string {
	for i, a := range args {
		name, val, hasVal := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if name != "config" || !strings.HasPrefix(a, "-") {
			continue
		}
		if hasVal {
			return val
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func datasetFlags(fs *flag.FlagSet, d *config.Dataset) *string {
	fs.StringVar(&d.DataDir, "data", d.DataDir, "Папка с annotations.txt и файлами поз")
	fs.IntVar(&d.Window, "window", d.Window, "Размер окна в кадрах")
	fs.IntVar(&d.Stride, "stride", d.Stride, "Шаг между началами окон")
	files := fs.String("files", strings.Join(d.FileNames, ","), "Имена файлов через запятую (расширение необязательно)")
	return files
}

func styleFlags(fs *flag.FlagSet, s *config.Style) *string {
	fs.StringVar(&s.Background, "bg", s.Background, "Цвет фона")
	fs.StringVar(&s.LineStyle, "linestyle", s.LineStyle, `Стиль линии: - -- -. : или "" (без линии)`)
	fs.Float64Var(&s.LineWidth, "linewidth", s.LineWidth, "Толщина линии (pt)")
	fs.StringVar(&s.Marker, "marker", s.Marker, `Маркер: o . s ^ x + или "" (без маркера)`)
	fs.Float64Var(&s.MarkerSize, "markersize", s.MarkerSize, "Размер маркера (pt)")
	fs.BoolVar(&s.Override, "override", s.Override, "Перезаписывать существующие изображения")
	return fs.String("cell", fmt.Sprintf("%dx%d", s.CellHeight, s.CellWidth), "Размер ячейки графика HxW в пикселях")
}

func runPrepare(args []string) error {
	cfg, err := loadConfig(configPath(args))
	if err != nil {
		return err
	}
	d := &cfg.Dataset

	fs := flag.NewFlagSet("prepare", flag.ExitOnError)
	fs.String("config", "", "YAML-файл конфигурации")
	files := datasetFlags(fs, d)
	fs.StringVar(&d.Tag, "tag", d.Tag, "Тег датасета в именах файлов")
	fs.IntVar(&d.MaxFiles, "max-files", d.MaxFiles, "Максимум обработанных файлов (0 - все)")
	fs.StringVar(&d.OutputDir, "out", d.OutputDir, "Папка для массивов и манифеста")
	fs.Parse(args)

	d.FileNames = splitList(*files)
	d.Save = true
	if d.OutputDir == "" {
		d.OutputDir = d.DataDir
	}

	start := time.Now()
	if _, err := dataset.Build(*d); err != nil {
		return err
	}
	fmt.Printf("[+] Датасет готов за %.2fs\n", time.Since(start).Seconds())
	return nil
}

func runRender(args []string) error {
	cfg, err := loadConfig(configPath(args))
	if err != nil {
		return err
	}
	r := &cfg.Render

	fs := flag.NewFlagSet("render", flag.ExitOnError)
	fs.String("config", "", "YAML-файл конфигурации")
	fs.StringVar(&r.SequencePath, "sequence", r.SequencePath, "Файл .npy с окнами")
	fs.StringVar(&r.LabelsPath, "labels", r.LabelsPath, "Файл .npy с метками окон")
	fs.StringVar(&r.BasePath, "out", r.BasePath, "Базовая папка для изображений")
	fs.IntVar(&r.Workers, "workers", r.Workers, "Потоки рендера (0 - число CPU минус 1)")
	fs.BoolVar(&r.ShowProgress, "progress", r.ShowProgress, "Показывать прогресс-бар")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Адрес Redis для общего реестра захватов")
	cell := styleFlags(fs, &r.Style)
	fs.Parse(args)

	if r.Style.CellHeight, r.Style.CellWidth, err = config.ParseCell(*cell); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}

	if !system.CheckMemory(r.SequencePath, r.LabelsPath) {
		log.Printf("[!] Мало памяти: массивы могут не поместиться в RAM")
	}
	arrays, err := dataset.LoadArrays(r.SequencePath, r.LabelsPath)
	if err != nil {
		return err
	}
	defer arrays.Close()

	return render(cfg, arrays)
}

func runDemo(args []string) error {
	cfg, err := loadConfig(configPath(args))
	if err != nil {
		return err
	}
	d := &cfg.Dataset
	r := &cfg.Render

	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	fs.String("config", "", "YAML-файл конфигурации")
	files := datasetFlags(fs, d)
	numFiles := fs.Int("num-files", 2, "Сколько последовательностей взять, если -files пуст")
	fs.StringVar(&r.BasePath, "out", "demo_imgs", "Базовая папка для изображений")
	fs.IntVar(&r.Workers, "workers", r.Workers, "Потоки рендера (0 - число CPU минус 1)")
	fs.Parse(args)

	d.FileNames = splitList(*files)
	if len(d.FileNames) == 0 {
		names, err := source.ListSequences(d.DataDir)
		if err != nil {
			return err
		}
		if len(names) > *numFiles {
			names = names[:*numFiles]
		}
		d.FileNames = names
	}
	d.Tag = "demo"
	d.MaxFiles = len(d.FileNames)
	d.Save = true
	if d.OutputDir == "" {
		d.OutputDir = d.DataDir
	}

	ds, err := dataset.Build(*d)
	if err != nil {
		return err
	}

	r.BasePath = demoBase(r.BasePath, d.Window, d.Stride)
	r.Style.Override = true
	r.Style.LineWidth = 0.5
	r.Style.MarkerSize = 1
	return render(cfg, ds)
}

// demoBase keeps demo runs with different window/stride apart: out/w{w}_s{s}.
func demoBase(out string, w, stride int) string {
	return filepath.Join(out, fmt.Sprintf("w%d_s%d", w, stride))
}

func render(cfg *config.Config, src source.Source) error {
	p := engine.NewRenderProject(cfg.Render, src)

	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		l, err := ledger.NewRedis(ctx, cfg.RedisAddr, p.RunID, ledger.DefaultTTL)
		cancel()
		if err != nil {
			return err
		}
		defer l.Close()
		p.Ledger = l
		p.LedgerPrefix = cfg.RedisPrefix
		fmt.Printf("[*] Реестр захватов: redis %s (префикс %q)\n", cfg.RedisAddr, cfg.RedisPrefix)
	}

	report, err := p.Run(context.Background())
	if report == nil {
		return err
	}
	for _, te := range report.Failed {
		log.Printf("[!] %v", te)
	}
	if err != nil {
		return fmt.Errorf("%d of %d windows failed", len(report.Failed), report.Total)
	}
	return nil
}
