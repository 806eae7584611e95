package main

import (
	"fmt"
	"log"
	"net"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

const feedAddr = "127.0.0.1:8080"

func main() {
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║        AnchorVision Launcher         ║")
	fmt.Println("╚══════════════════════════════════════╝")

	// 1. Iniciar o simulador de sensoriamento
	fmt.Println("[1/2] Iniciando feed de sensores...")
	serverCmd := exec.Command(binaryPath("servidor", "server"))
	serverCmd.Dir = "servidor"
	if err := serverCmd.Start(); err != nil {
		log.Fatalf("Erro ao iniciar o feed: %v", err)
	}

	// 2. Esperar o feed aceitar conexões antes de abrir o cliente
	fmt.Println("Aguardando o feed aceitar conexões...")
	if !waitForPort(feedAddr, 15*time.Second) {
		fmt.Println("AVISO: feed não respondeu; o cliente tentará reconectar sozinho.")
	}

	// 3. Abrir o cliente
	fmt.Println("[2/2] Abrindo cliente...")
	absClient, err := filepath.Abs(binaryPath("cliente", "client"))
	if err != nil {
		log.Fatalf("Erro ao resolver caminho do cliente: %v", err)
	}

	clientCmd := exec.Command(absClient)
	clientCmd.Dir = "cliente" // Working dir do cliente, para saves/ e config.json
	if err := clientCmd.Start(); err != nil {
		log.Fatalf("Erro ao executar o cliente em %s: %v", absClient, err)
	}

	fmt.Println("\nAnchorVision iniciado.")
}

// binaryPath monta o caminho do executável conforme a plataforma.
func binaryPath(dir, name string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(dir, name+".exe")
	}
	return filepath.Join(dir, name)
}

// waitForPort tenta conectar no endereço até o timeout.
func waitForPort(addr string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			return true
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}
