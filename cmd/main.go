package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"flowpath/api"
	"flowpath/common"
	"flowpath/config"
	"flowpath/query"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging sends logs to stdout and to a rotating file under logCfg.Dir
func setupLogging(logCfg config.LogConfig) {
	os.MkdirAll(logCfg.Dir, 0755)
	logFile := filepath.Join(logCfg.Dir, "flowpath.log")

	fileLogger := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 7,    // Keep 7 old log files
		MaxAge:     30,   // Days
		Compress:   true, // Compress old log files
	}

	multiWriter := io.MultiWriter(os.Stdout, fileLogger)
	log.SetOutput(multiWriter)

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := log.ParseLevel(logCfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	log.Infof("Logging initialized: file=%s, stdout=enabled", logFile)
}

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		log.Fatalf("loading configuration failed, err:%v", err)
		return
	}
	setupLogging(cfg.Log)

	provider, closeProvider, err := cfg.NewProvider()
	if err != nil {
		log.Fatalf("creating %s snapshot provider failed, err:%v", cfg.Provider.Kind, err)
		return
	}
	defer closeProvider()

	pool, err := common.NewPool(cfg.PoolConfig())
	if err != nil {
		log.Fatalf("creating worker pool failed, err:%v", err)
		return
	}
	defer pool.Release()

	service := query.NewService(provider, pool)
	handler := api.NewHandler(service)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- api.RunServerWithContext(ctx, cfg.Server.ListenAddr, handler.Router())
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	log.Infof("flowpath init success, provider=%s, methods=%v", cfg.Provider.Kind, handler.Methods().Names())

	select {
	case <-signalChan:
		log.Infof("received signal, shutting down")
		cancel()
		<-serverDone
	case err := <-serverDone:
		if err != nil {
			log.Errorf("API server exited, err:%v", err)
		}
	}
}
