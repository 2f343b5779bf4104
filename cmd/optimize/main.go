// Package main provides CMA-ES optimization for finding engine parameters
// that drive the population's best cost down fastest.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/blobs/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	generations := flag.Int("generations", 200, "Generations per simulation run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Simulation runs log at info level; keep only warnings.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	// Create output directory
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Load base config
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	// Create parameter vector
	params := NewParamVector(baseCfg)

	// Generate seeds for evaluation
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *generations, evalSeeds, baseCfg)

	// Set up CMA-ES
	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation, seeds run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	// Open log file
	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "final_best"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	// Track evaluations and timing
	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	// Wrap the function to log evaluations
	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = make([]float64, len(clamped))
			copy(bestParams, clamped)
		}

		final := evaluator.LastFinal()
		row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness), fmt.Sprintf("%.6f", final)}
		for _, v := range clamped {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		logWriter.Write(row)
		logWriter.Flush()

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: mean_best=%.4f final=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, fitness, final, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, generations per run: %d\n", *seeds, *generations)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.0f\n", spec.Path, bestParams[i])
	}

	// Save best config
	bestCfg := baseCfg.Clone()
	if err := params.ApplyToConfig(bestCfg, bestParams); err != nil {
		log.Printf("best parameters rejected: %v", err)
	} else {
		configOutPath := filepath.Join(*outputDir, "best_config.yaml")
		if err := bestCfg.WriteYAML(configOutPath); err != nil {
			log.Printf("failed to write best config: %v", err)
		} else {
			fmt.Printf("\nBest config saved to: %s\n", configOutPath)
		}
	}

	// Save the best-cost curve of the best run
	if series := evaluator.BestSeries(); series != nil {
		seriesPath := filepath.Join(*outputDir, "best_fitness.csv")
		f, err := os.Create(seriesPath)
		if err != nil {
			log.Printf("failed to create best fitness file: %v", err)
			return
		}
		defer f.Close()
		if err := gocsv.MarshalFile(&series, f); err != nil {
			log.Printf("failed to write best fitness: %v", err)
		} else {
			fmt.Printf("Best fitness curve saved to: %s\n", seriesPath)
		}
	}
}
