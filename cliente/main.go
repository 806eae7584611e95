package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"AnchorVision/cliente/internal/app"
	"AnchorVision/shared/config"
)

func main() {
	// IMPORTANTE para estabilidade: Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	// Flags de linha de comando
	feedURL := flag.String("feed", "", "URL do feed de sensores (padrão: ws://127.0.0.1:8080/ws)")
	envPath := flag.String("env", "", "Caminho de um ambiente glTF para carregar na inicialização")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	flag.Parse()

	// Configurar log em arquivo
	f, err := os.OpenFile("debug_av.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		log.SetOutput(f)
		log.Println("--- INICIANDO ANCHOR VISION ---")
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║         AnchorVision v0.1.0          ║")
	log.Println("║  Registro de superfícies e encaixe   ║")
	log.Println("╚══════════════════════════════════════╝")

	// Carregar configurações
	cfg := config.Load()

	// Flags sobrescrevem o config salvo
	if *feedURL != "" {
		cfg.FeedURL = *feedURL
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}

	application := app.New(cfg)
	if *envPath != "" {
		application.PendingEnvPaths = append(application.PendingEnvPaths, *envPath)
	}
	application.Run()
}
