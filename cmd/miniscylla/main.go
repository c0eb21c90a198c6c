package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/tuannm99/miniscylla"
	"github.com/tuannm99/miniscylla/internal"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	prompt := "cqlsh> "
	historyFile := filepath.Join(os.TempDir(), ".miniscylla_history")

	var opts []miniscylla.Option
	if *configPath != "" {
		cfg, err := internal.LoadConfig(*configPath)
		if err != nil {
			log.Error("main: load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		opts = append(opts, miniscylla.WithNode(cfg.Node.RPCAddress, cfg.Node.Datacenter, cfg.Node.Rack))
		if cfg.Shell.Keyspace != "" {
			opts = append(opts, miniscylla.WithKeyspace(cfg.Shell.Keyspace))
		}
		if cfg.Shell.Prompt != "" {
			prompt = cfg.Shell.Prompt
		}
		if cfg.Shell.HistoryFile != "" {
			historyFile = cfg.Shell.HistoryFile
		}
	}
	opts = append(opts, miniscylla.WithLogger(log))

	session := miniscylla.Open(opts...)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("miniscylla shell; type 'exit' to quit")
	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			// io.EOF or Ctrl-C abort
			fmt.Println()
			return
		}
		stmt := strings.TrimSpace(input)
		if stmt == "" {
			continue
		}
		if strings.EqualFold(stmt, "exit") || strings.EqualFold(stmt, "quit") {
			return
		}
		line.AppendHistory(input)

		res, err := session.Execute(stmt)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		printResult(res)
	}
}

func printResult(res *miniscylla.Result) {
	if len(res.Columns) == 0 {
		fmt.Println("OK")
		return
	}
	fmt.Println(strings.Join(res.Columns, " | "))
	for _, row := range res.Rows {
		parts := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				parts[i] = "null"
			} else {
				parts[i] = fmt.Sprintf("%v", v)
			}
		}
		fmt.Println(strings.Join(parts, " | "))
	}
	fmt.Printf("(%d rows)\n", len(res.Rows))
}
