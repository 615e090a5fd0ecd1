package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docqa/internal/console"
)

func main() {
	_ = godotenv.Load()

	var (
		addr      string
		tenantID  string
		topK      int
		threshold float64
	)
	flag.StringVar(&addr, "addr", "http://localhost:8080", "Base URL of the docqa server")
	flag.StringVar(&tenantID, "tenant", "", "Tenant to query as (required)")
	flag.IntVar(&topK, "top-k", 5, "Number of results per query")
	flag.Float64Var(&threshold, "threshold", 0.7, "Minimum similarity score")
	flag.Parse()

	if tenantID == "" {
		fmt.Println("Usage: docqa-console --tenant=<tenant-id> [--addr=http://localhost:8080]")
		os.Exit(1)
	}

	client := console.NewClient(addr, tenantID, topK, float32(threshold))
	m := console.New(client, tenantID)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
