package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"github.com/annelo/go-voxel-engine/internal/config"
	"github.com/annelo/go-voxel-engine/internal/engine"
	"github.com/annelo/go-voxel-engine/internal/gameloop"
	"github.com/annelo/go-voxel-engine/internal/plugin"
	"github.com/annelo/go-voxel-engine/internal/storage"
	"github.com/annelo/go-voxel-engine/plugins/sampleplugin"
)

var (
	configPath = flag.String("config", "", "Путь к YAML-конфигурации движка")
	worldPath  = flag.String("world", "/tmp/world", "Путь для хранения данных мира")
	worldName  = flag.String("name", "", "Название игрового мира (переопределяет конфиг)")
	seed       = flag.Int64("seed", 0, "Сид для генерации мира (0 = случайный)")
	noStorage  = flag.Bool("no-storage", false, "Запуск без хранилища данных")
	pluginsDir = flag.String("plugins", "./plugins", "Директория конфигураций плагинов")
)

func main() {
	// Парсим флаги командной строки
	flag.Parse()

	// Загружаем конфигурацию движка
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Не удалось загрузить конфигурацию %s: %v", *configPath, err)
		}
		cfg = loaded
	}
	if *worldName != "" {
		cfg.WorldName = *worldName
	}
	if *seed != 0 {
		cfg.WorldSeed = *seed
	}
	if cfg.WorldSeed == 0 {
		cfg.WorldSeed = time.Now().UnixNano()
	}
	if *worldPath != "" {
		cfg.StoragePath = *worldPath
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Не удалось создать логгер: %v", err)
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1) Инициализируем реестр плагинов
	reg := plugin.NewDefaultRegistry()
	// 2) Обозначаем границу core-регистраций и загружаем плагины
	pm := plugin.NewManager(*pluginsDir)
	pm.Add(sampleplugin.New())
	reg.MarkCore()
	pm.LoadPlugins(reg)

	// Инициализируем хранилище данных, если оно включено
	var store storage.WorldStorage
	if *noStorage {
		log.Printf("Запуск в режиме без хранилища")
	} else {
		binStore, err := storage.NewBinaryStorage(cfg.StoragePath, cfg.WorldName, cfg.WorldSeed)
		if err != nil {
			log.Printf("Ошибка при инициализации хранилища: %v", err)
			log.Printf("Продолжаем без хранилища...")
		} else {
			log.Printf("Бинарное хранилище мира инициализировано в %s", cfg.StoragePath)
			store = binStore
		}
	}

	// Собираем мир: headless-запуск без физики и аудио
	world, err := engine.NewWorld(cfg, logger, store, nil, nil, reg)
	if err != nil {
		log.Fatalf("Не удалось создать мир: %v", err)
	}

	// Игровой цикл: мир тикает первым, затем остальные системы
	systems := []gameloop.System{
		world.System(),
		gameloop.NewWeatherSystem(cfg.WorldSeed),
		gameloop.NewDiagnosticsSystem(world, 10*int64(cfg.TicksPerSecond)),
	}
	systems = append(systems, reg.GameSystems()...)

	loop, err := gameloop.NewLoop(cfg.TickInterval(), gameloop.Dependencies{Config: cfg, Logger: logger}, systems...)
	if err != nil {
		log.Fatalf("Не удалось инициализировать игровой цикл: %v", err)
	}

	// Обрабатываем сигналы для корректного завершения
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		log.Println("Получен сигнал завершения, останавливаем движок...")
		cancel()
	}()

	// CLI для администратора: регистрируем встроенные команды
	reg.RegisterCommand("reload", "Reload plugins", func(args []string) (string, error) {
		pm.ReloadPlugins(reg)
		return "Plugins reloaded successfully\n", nil
	})
	reg.RegisterCommand("stop", "Stop engine", func(args []string) (string, error) {
		cancel()
		return "Engine stopping\n", nil
	})
	reg.RegisterCommand("status", "Show world status", func(args []string) (string, error) {
		return world.String() + "\n", nil
	})
	reg.RegisterCommand("help", "List commands", func(args []string) (string, error) {
		var sb strings.Builder
		for _, cmd := range reg.Commands() {
			sb.WriteString(fmt.Sprintf("%s - %s\n", cmd.Name, cmd.Description))
		}
		return sb.String(), nil
	})
	reg.RegisterCommand("plugins", "List loaded plugins", func(args []string) (string, error) {
		var sb strings.Builder
		for _, meta := range reg.Metas() {
			sb.WriteString(fmt.Sprintf("%s v%s by %s: %s\n", meta.Name, meta.Version, meta.Author, meta.Description))
		}
		return sb.String(), nil
	})
	reg.RegisterCommand("config", "Show plugin config: config <pluginName>", func(args []string) (string, error) {
		if len(args) < 1 {
			return "Usage: config <pluginName>\n", nil
		}
		name := args[0]
		pcfg := reg.PluginConfig(name)
		if pcfg == nil {
			return fmt.Sprintf("No config for plugin %s\n", name), nil
		}
		data, err := yaml.Marshal(pcfg)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})

	// CLI для администратора: REPL для команд
	go runREPL(reg)

	loop.Run(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	world.Stop(stopCtx)
	log.Println("Движок остановлен")
}

func runREPL(reg plugin.Registry) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]
		found := false
		for _, cmd := range reg.Commands() {
			if cmd.Name == name {
				found = true
				out, err := cmd.Handler(args)
				if err != nil {
					fmt.Printf("Ошибка: %v\n", err)
				} else {
					fmt.Print(out)
				}
				break
			}
		}
		if !found {
			fmt.Printf("Неизвестная команда: %s (help — список команд)\n", name)
		}
	}
}
