package main

import (
	"log"
	"os"
)

func main() {
	cfg, err := LoadConfig(os.Getenv(configEnv))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("failed to open log file %s: %v", cfg.LogFile, err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "params":
			listParams(os.Stdout)
			return
		case "compile":
			if err := compilePatch(os.Stdin, os.Stdout); err != nil {
				log.Fatalf("compile failed: %v", err)
			}
			return
		case "sysex":
			if err := dumpPatch(os.Stdin, os.Stdout, cfg); err != nil {
				log.Fatalf("sysex dump failed: %v", err)
			}
			return
		case "decode":
			if err := decodePatch(os.Stdin, os.Stdout); err != nil {
				log.Fatalf("decode failed: %v", err)
			}
			return
		case "init-config":
			path, err := InitConfig(os.Getenv(configEnv))
			if err != nil {
				log.Fatalf("init-config failed: %v", err)
			}
			log.Printf("Wrote default config to %s", path)
			return

		case "mcp":
			runMCP(cfg)
			return

		default:
			log.Fatalf("unknown command %q", os.Args[1])
		}
	}
	log.Println("exiting: no command specified")
}
