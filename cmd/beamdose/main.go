package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"beamdose/pkg/anatomy"
	"beamdose/pkg/config"
	"beamdose/pkg/engine"
	"beamdose/pkg/planio"
	"beamdose/pkg/report"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "beamdose.yaml", "Treatment plan configuration file (YAML)")
	initConfig := flag.Bool("init-config", false, "Write a default configuration file and exit")
	anatomyPath := flag.String("anatomy", "", "Patient anatomy grid CSV (overrides config)")
	tablePath := flag.String("dosetable", "", "Percent-depth-dose table CSV (overrides config)")
	angles := flag.String("angles", "", "Comma-separated beam angles in degrees (overrides config)")
	reportPath := flag.String("report", "", "Report output file (overrides config; default stdout)")
	heatmapPath := flag.String("heatmap", "", "Dose heatmap PNG output file (overrides config)")
	flag.Parse()

	log := logrus.New()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		log.Infof("Wrote default configuration to %s", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyOverrides(cfg, *anatomyPath, *tablePath, *reportPath, *heatmapPath)

	if *angles != "" {
		beams, err := parseAngles(*angles)
		if err != nil {
			log.Fatalf("Invalid -angles value: %v", err)
		}
		cfg.Beams = beams
	}

	if !cfg.Output.Verbose {
		log.SetLevel(logrus.WarnLevel)
	}

	if err := cfg.Validate(); err != nil {
		flag.Usage()
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := run(log, cfg); err != nil {
		log.Fatalf("Dose calculation failed: %v", err)
	}
}

func run(log *logrus.Logger, cfg *config.Config) error {
	grid, err := planio.LoadAnatomyFile(cfg.Inputs.AnatomyFile)
	if err != nil {
		return err
	}
	minX, minY, maxX, maxY := grid.Bounds()
	cx, cy := grid.Center()
	log.WithFields(logrus.Fields{
		"points": grid.NumPoints(),
		"stride": grid.Stride(),
		"bounds": fmt.Sprintf("[%g,%g]x[%g,%g]", minX, maxX, minY, maxY),
		"center": fmt.Sprintf("(%g, %g)", cx, cy),
	}).Info("Loaded patient anatomy grid")

	if cfg.Output.LogTargetPoints {
		for _, p := range grid.Points() {
			if p.Class == anatomy.Prostate {
				log.Infof("Target structure point at (%g, %g)", p.X, p.Y)
			}
		}
	}

	table, err := planio.LoadDoseTableFile(cfg.Inputs.DoseTableFile)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"offAxisCoords": table.NumOffAxis(),
		"depths":        table.NumDepths(),
	}).Info("Loaded percent-depth-dose table")

	eng := engine.NewEngine(grid)
	for _, beam := range cfg.Plan().Beams {
		summary, err := eng.ApplyBeam(table, beam.AngleDegrees)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"beam":     beam.Label,
			"angle":    beam.AngleDegrees,
			"surfaceY": summary.SurfaceY,
			"maxDepth": summary.MaxDepth,
		}).Info("Applied beam")
	}

	out := os.Stdout
	if cfg.Output.ReportFile != "" {
		f, err := os.Create(cfg.Output.ReportFile)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := report.WriteSummary(out, eng.Stats(), eng.BeamsApplied()); err != nil {
		return err
	}
	if err := report.WriteText(out, grid, eng.Doses()); err != nil {
		return err
	}

	if cfg.Output.HeatmapFile != "" {
		if err := report.SaveHeatmap(cfg.Output.HeatmapFile, grid, eng.Doses()); err != nil {
			return err
		}
		log.Infof("Dose heatmap saved to %s", cfg.Output.HeatmapFile)
	}

	return nil
}

func applyOverrides(cfg *config.Config, anatomyPath, tablePath, reportPath, heatmapPath string) {
	if anatomyPath != "" {
		cfg.Inputs.AnatomyFile = anatomyPath
	}
	if tablePath != "" {
		cfg.Inputs.DoseTableFile = tablePath
	}
	if reportPath != "" {
		cfg.Output.ReportFile = reportPath
	}
	if heatmapPath != "" {
		cfg.Output.HeatmapFile = heatmapPath
	}
}

func parseAngles(s string) ([]config.BeamConfig, error) {
	var beams []config.BeamConfig
	for _, part := range strings.Split(s, ",") {
		angle, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing angle %q: %w", part, err)
		}
		beams = append(beams, config.BeamConfig{Angle: angle, Label: fmt.Sprintf("beam-%g", angle)})
	}
	return beams, nil
}
