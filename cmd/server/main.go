package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/mlserve/cifar-api/internal/config"
	"github.com/mlserve/cifar-api/internal/handlers"
	"github.com/mlserve/cifar-api/internal/logging"
	"github.com/mlserve/cifar-api/internal/model"
	"github.com/mlserve/cifar-api/internal/server"
)

// version of the code, set at build time
var version string

func info() string {
	return fmt.Sprintf("cifar-api git=%s go=%s date=%s",
		version, runtime.Version(), time.Now().Format("2006-01-02"))
}

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "", "configuration file")
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "print version information about the server")
	flag.Parse()
	if showVersion {
		fmt.Println(info())
		os.Exit(0)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}
	if err := logging.Setup(cfg.LogFile, cfg.Verbose); err != nil {
		log.Fatalf("unable to set up logging: %v", err)
	}
	if cfg.Verbose > 0 {
		log.Printf("config: %+v", cfg)
	}

	log.Printf("loading model from %s", cfg.ModelPath)
	classifier, err := model.New(cfg.ModelPath)
	if err != nil {
		// do not serve without a model
		log.Fatalf("failed to initialize classifier: %v", err)
	}
	defer classifier.Close()
	log.Printf("model loaded, classes: %v", classifier.Classes())

	handler := handlers.NewHandler(classifier, cfg.MaxUploadSize)
	srv, err := server.New(cfg, handler)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	log.Printf("server starting on port %d", cfg.Port)
	log.Println("endpoints:")
	log.Println("  GET  /           - API description")
	log.Println("  GET  /health     - health check")
	log.Println("  GET  /model-info - model readiness and contract")
	log.Println("  POST /classify   - classify an uploaded image")
	log.Fatal(srv.ListenAndServe())
}
