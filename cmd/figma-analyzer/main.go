package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	figmaanalyzer "github.com/kataras/figma-analyzer"
	"github.com/kataras/figma-analyzer/internal/config"
	"github.com/kataras/figma-analyzer/internal/logging"
	"github.com/kataras/figma-analyzer/pkg/assets"
	"github.com/kataras/figma-analyzer/pkg/figma"
	"github.com/kataras/figma-analyzer/pkg/mcp"
	"github.com/kataras/figma-analyzer/pkg/server"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = figma.Version

var (
	configFile     string
	figmaURL       string
	accessToken    string
	treeFile       string
	nodeIDs        string
	outputFile     string
	jsonFile       string
	contextFile    string
	downloadAssets bool
	assetDir       string
	assetPrefix    string
	assetFormat    string
	assetScale     float64
	maxNodes       int
	port           int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "figma-analyzer",
		Short: "Analyze Figma designs into design tokens and UI components",
		Long:  "A tool to extract design tokens (colors, typography, spacing, borders, effects, layout) and detect UI components (buttons, cards, navigation, forms, icons) from Figma files",
		Run:   run,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default "+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().StringVarP(&accessToken, "token", "t", "", "Figma Personal Access Token (default $FIGMA_ACCESS_TOKEN)")
	rootCmd.PersistentFlags().IntVar(&maxNodes, "max-nodes", 0, "Refuse trees with more nodes than this, negative disables the check")

	rootCmd.Flags().StringVarP(&figmaURL, "url", "u", "", "Figma file URL")
	rootCmd.Flags().StringVarP(&treeFile, "file", "f", "", "Analyze a node tree saved as JSON instead of calling the Figma API")
	rootCmd.Flags().StringVarP(&nodeIDs, "node-ids", "n", "", "Comma-separated node IDs to analyze (optional, defaults to the node of the URL or the entire file)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "FIGMA_DESIGN_ANALYSIS.md", "Output markdown file")
	rootCmd.Flags().StringVar(&jsonFile, "json", "", "Also write the analysis as JSON to this file")
	rootCmd.Flags().StringVar(&contextFile, "context", "", "Also write the design context block to this file")
	rootCmd.Flags().BoolVar(&downloadAssets, "download-assets", false, "Download the images of nodes with image fills")
	rootCmd.Flags().StringVar(&assetDir, "asset-dir", "", "Output directory for downloaded images")
	rootCmd.Flags().StringVar(&assetPrefix, "asset-prefix", "", "Public URL prefix of downloaded images")
	rootCmd.Flags().StringVar(&assetFormat, "asset-format", "", "Image format: png, jpg, svg, pdf")
	rootCmd.Flags().Float64Var(&assetScale, "asset-scale", 0, "Image render scale")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis over HTTP",
		RunE:  serve,
	}
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (default $PORT or 8080)")

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analysis as MCP tools on stdin/stdout",
		RunE:  serveMCP,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("figma-analyzer version %s\n", version)
		},
	}

	rootCmd.AddCommand(serveCmd, mcpCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and overlays the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("token") {
		cfg.Token = accessToken
	}
	if flags.Changed("max-nodes") {
		cfg.MaxNodes = maxNodes
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("asset-dir") {
		cfg.Assets.Dir = assetDir
	}
	if flags.Changed("asset-prefix") {
		cfg.Assets.PublicPrefix = assetPrefix
	}
	if flags.Changed("asset-format") {
		cfg.Assets.Format = assetFormat
	}
	if flags.Changed("asset-scale") {
		cfg.Assets.Scale = assetScale
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	cyan.Println("\n🎨 Figma Design Analyzer")
	cyan.Println("========================")
	cyan.Println()

	cfg, err := loadConfig(cmd)
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if figmaURL != "" && treeFile == "" && cfg.Token == "" {
		red.Println("Error: a Figma access token is required, use --token or set FIGMA_ACCESS_TOKEN")
		os.Exit(1)
	}

	var parsedNodeIDs []string
	if nodeIDs != "" {
		parsedNodeIDs = figmaanalyzer.ParseNodeIDs(nodeIDs)
	}

	opts := figmaanalyzer.Options{
		AccessToken:    cfg.Token,
		FileURL:        figmaURL,
		NodeIDs:        parsedNodeIDs,
		TreeFile:       treeFile,
		MaxNodes:       cfg.MaxNodes,
		DownloadAssets: downloadAssets,
		Assets: assets.Config{
			Format:       cfg.Assets.Format,
			Scale:        cfg.Assets.Scale,
			OutputDir:    cfg.Assets.Dir,
			PublicPrefix: cfg.Assets.PublicPrefix,
		},
		Logger: progressLogger(cfg),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := figmaanalyzer.Run(ctx, opts)
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Display analysis stats.
	set := result.Analysis.DesignTokens
	summary := result.Analysis.Components.Summary
	cyan.Println("\n📊 Analysis Summary:")
	fmt.Printf("  • Colors: %d solid, %d gradients\n", len(set.Colors), len(set.Gradients))
	fmt.Printf("  • Typography: %d headings, %d body, %d captions\n",
		len(set.Typography.Headings),
		len(set.Typography.Body),
		len(set.Typography.Captions))
	fmt.Printf("  • Spacing Scale: %d\n", len(set.SpacingScale))
	fmt.Printf("  • Border Radii: %d\n", len(set.Borders.Radius))
	fmt.Printf("  • Shadows: %d\n", len(set.Effects.Shadows))
	fmt.Printf("  • Components: %d buttons, %d cards, %d navigation, %d forms, %d icons\n",
		summary.ButtonCount,
		summary.CardCount,
		summary.NavigationCount,
		summary.FormCount,
		summary.IconCount)
	if len(result.Assets) > 0 {
		fmt.Printf("  • Image Assets: %d\n", len(result.Assets))
	}

	writeOutput(outputFile, []byte(result.Markdown))

	if jsonFile != "" {
		b, err := json.MarshalIndent(result.Analysis, "", "  ")
		if err != nil {
			red.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		writeOutput(jsonFile, b)
	}

	if contextFile != "" {
		writeOutput(contextFile, []byte(result.Context))
	}

	green.Printf("\n✨ Successfully analyzed design into %s\n\n", outputFile)
}

func writeOutput(path string, data []byte) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	green.Printf("\n💾 Writing to %s... ", path)
	if err := os.WriteFile(path, data, 0644); err != nil {
		red.Printf("✗\n")
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	green.Println("✓")
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	var fetch figmaanalyzer.FetchFunc
	if cfg.Token != "" {
		fetch = figmaanalyzer.ClientFetcher(figma.NewClient(cfg.Token))
	} else {
		logger.Warn("No Figma access token configured, only document analysis is available")
	}

	srv, err := server.New(server.Config{
		Fetch:     fetch,
		CacheSize: cfg.CacheSize,
		MaxNodes:  cfg.MaxNodes,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port))
}

func serveMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the protocol, logs go to stderr.
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})

	var fetch figmaanalyzer.FetchFunc
	if cfg.Token != "" {
		fetch = figmaanalyzer.ClientFetcher(figma.NewClient(cfg.Token))
	} else {
		logger.Warn("No Figma access token configured, only analyze_document is available")
	}

	return mcp.NewServer(mcp.Config{
		Fetch:    fetch,
		MaxNodes: cfg.MaxNodes,
		Logger:   logger,
	}).ServeStdio()
}

// progressLogger returns the colored terminal logger, or a structured one when
// the configuration asks for JSON logs.
func progressLogger(cfg *config.Config) figmaanalyzer.Logger {
	if cfg.Log.Format == "json" {
		return logging.Printf{Logger: logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})}
	}
	return &cliLogger{}
}

// cliLogger implements figmaanalyzer.Logger with colored terminal output.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}
