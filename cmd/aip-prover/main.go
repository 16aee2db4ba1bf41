// Copyright 2025 Certen Protocol
//
// aip-prover is the verdict-derivation proving service's CLI and HTTP
// entry point.
//
// Usage:
//
//	aip-prover prove  -input <analysis.json> [-thinking-hash H] [-card-hash H] [-values-hash H] [-model M] [-output receipt.bin]
//	aip-prover verify -receipt <receipt.bin>
//	aip-prover serve  [-port 8080]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mnemom/aip-verdict-prover/pkg/config"
	"github.com/mnemom/aip-verdict-prover/pkg/database"
	"github.com/mnemom/aip-verdict-prover/pkg/guest"
	"github.com/mnemom/aip-verdict-prover/pkg/model"
	"github.com/mnemom/aip-verdict-prover/pkg/server"
	"github.com/mnemom/aip-verdict-prover/pkg/zkproof"
)

// version identifies this build in the /health response. There is no
// real release pipeline in this exercise, so it is a fixed string rather
// than something stamped in by -ldflags.
const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "prove":
		runProve(os.Args[2:])
	case "verify":
		runVerify(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "aip-prover — AIP zero-knowledge verdict prover")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  aip-prover prove  -input <analysis.json> [-thinking-hash H] [-card-hash H] [-values-hash H] [-model M] [-output receipt.bin]")
	fmt.Fprintln(os.Stderr, "  aip-prover verify -receipt <receipt.bin>")
	fmt.Fprintln(os.Stderr, "  aip-prover serve  [-port 8080]")
}

func runProve(args []string) {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	input := fs.String("input", "", "path to the analysis JSON file")
	thinkingHash := fs.String("thinking-hash", "", "SHA-256 hash of the thinking block")
	cardHash := fs.String("card-hash", "", "SHA-256 hash of the alignment card")
	valuesHash := fs.String("values-hash", "", "SHA-256 hash of the conscience values")
	modelFlag := fs.String("model", "unknown", "model identifier")
	output := fs.String("output", "receipt.bin", "output file for the receipt")
	fs.Parse(args)

	if *input == "" {
		log.Fatal("prove: -input is required")
	}

	analysisJSON, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("prove: read input: %v", err)
	}

	fmt.Printf("Proving verdict derivation for: %s\n", *input)

	guestOutput, err := guest.Run(model.GuestInput{
		AnalysisJSON: string(analysisJSON),
		ThinkingHash: *thinkingHash,
		CardHash:     *cardHash,
		ValuesHash:   *valuesHash,
		Model:        *modelFlag,
	})
	if err != nil {
		log.Fatalf("prove: guest pipeline: %v", err)
	}

	prover := zkproof.NewProver()
	if err := prover.Initialize(); err != nil {
		log.Fatalf("prove: initialize prover: %v", err)
	}

	receipt, err := prover.Prove(guestOutput)
	if err != nil {
		log.Fatalf("prove: generate proof: %v", err)
	}

	fmt.Printf("Verdict: %s\n", guestOutput.Verdict)
	fmt.Printf("Action: %s\n", guestOutput.Action)
	fmt.Printf("Concerns hash: %s\n", guestOutput.ConcernsHash)

	receiptBytes, err := receipt.Serialize()
	if err != nil {
		log.Fatalf("prove: serialize receipt: %v", err)
	}
	if err := os.WriteFile(*output, receiptBytes, 0o644); err != nil {
		log.Fatalf("prove: write receipt: %v", err)
	}
	fmt.Printf("Receipt written to: %s (%d bytes)\n", *output, len(receiptBytes))

	verified, err := prover.Verify(receiptBytes)
	if err != nil {
		log.Fatalf("prove: self-verification failed: %v", err)
	}
	fmt.Printf("Self-verification: verdict=%s, action=%s\n", verified.Verdict, verified.Action)
}

func runVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	receiptPath := fs.String("receipt", "", "path to the receipt binary file")
	fs.Parse(args)

	if *receiptPath == "" {
		log.Fatal("verify: -receipt is required")
	}

	receiptBytes, err := os.ReadFile(*receiptPath)
	if err != nil {
		log.Fatalf("verify: read receipt: %v", err)
	}
	fmt.Printf("Verifying receipt: %s (%d bytes)\n", *receiptPath, len(receiptBytes))

	prover := zkproof.NewProver()
	if err := prover.Initialize(); err != nil {
		log.Fatalf("verify: initialize prover: %v", err)
	}

	output, err := prover.Verify(receiptBytes)
	if err != nil {
		log.Fatalf("verify: FAILED: %v", err)
	}

	fmt.Println("Verification: PASSED")
	fmt.Printf("Verdict: %s\n", output.Verdict)
	fmt.Printf("Action: %s\n", output.Action)
	fmt.Printf("Concerns hash: %s\n", output.ConcernsHash)
	fmt.Printf("Thinking hash: %s\n", output.ThinkingHash)
	fmt.Printf("Card hash: %s\n", output.CardHash)
	fmt.Printf("Values hash: %s\n", output.ValuesHash)
	fmt.Printf("Model: %s\n", output.Model)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", "", "port to listen on (overrides PORT env var)")
	configPath := fs.String("config", "", "optional YAML file of static defaults (retry interval, DB pool sizes)")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("serve: load config: %v", err)
	}
	if *configPath != "" {
		if err := config.ApplyDefaultsFile(cfg, *configPath); err != nil {
			log.Fatalf("serve: apply config file %s: %v", *configPath, err)
		}
	}
	if *port != "" {
		cfg.ListenAddr = "0.0.0.0:" + *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("serve: %v", err)
	}

	logger := log.New(log.Writer(), "[aip-prover] ", log.LstdFlags)

	dbClient, err := database.NewClient(cfg, database.WithLogger(logger))
	if err != nil {
		log.Fatalf("serve: connect database: %v", err)
	}
	defer dbClient.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := dbClient.MigrateUp(migrateCtx); err != nil {
		migrateCancel()
		log.Fatalf("serve: run migrations: %v", err)
	}
	migrateCancel()

	store := database.NewProofStore(dbClient)

	prover := zkproof.NewProver()
	logger.Println("compiling proving circuit and running trusted setup...")
	if err := prover.Initialize(); err != nil {
		log.Fatalf("serve: initialize prover: %v", err)
	}
	logger.Printf("prover ready, image id %s", zkproof.ImageIDHex(zkproof.GuestImageID))

	handlers := server.NewHandlers(store, prover, cfg.ProverAPIKey, version, logger)
	mux := server.BuildRouter(handlers)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go server.RetryLoop(ctx, handlers, cfg.ListenAddr, cfg.RetryInterval, cfg.PendingBatchSize)

	go func() {
		logger.Printf("listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http server shutdown error: %v", err)
	}

	logger.Println("stopped")
}
