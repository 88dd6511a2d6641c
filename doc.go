// Package figmaanalyzer analyzes Figma designs via the Figma API and produces
// design tokens (colors, gradients, typography, spacing, borders, effects),
// a catalog of detected UI components (buttons, cards, navigation, form
// controls, icons), a plain-text design context for generative backends and
// a markdown report.
//
// The CLI lives in cmd/figma-analyzer; this root package exposes the same
// pipeline as a Go API so that callers can embed the analysis in their own
// tools without shelling out.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named figmaanalyzer:
//
//	import "github.com/kataras/figma-analyzer" // package figmaanalyzer
//
// # Quick start
//
//	result, err := figmaanalyzer.Run(ctx, figmaanalyzer.Options{
//	    AccessToken: os.Getenv("FIGMA_ACCESS_TOKEN"),
//	    FileURL:     "https://www.figma.com/design/ABC123/My-Design?node-id=1-2",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Analysis.Components.Summary.ButtonCount)
//	os.WriteFile("design.md", []byte(result.Markdown), 0644)
//
// # Offline analysis
//
// The analyzers only need a node tree. Set [Options.TreeFile] to a JSON file
// saved from the files or nodes endpoint (or a bare node) to skip the API, or
// call [Analyze] directly with a decoded [figma.Node].
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output.
//
// # Image assets
//
// When [Options.DownloadAssets] is true, nodes with visible IMAGE fills are
// rendered through the Figma images API, saved under the configured output
// directory and annotated with localSrc and AI_INSTRUCTION fields, which the
// design context then exposes to the generative backend.
//
// # Serving
//
// pkg/server exposes the analysis over HTTP and pkg/mcp as Model Context
// Protocol tools. Both take a [FetchFunc]; [ClientFetcher] builds one from a
// [figma.Client].
//
// # Node budget
//
// Trees larger than [Options.MaxNodes] are rejected with [ErrTreeTooLarge]
// before any analysis runs.
package figmaanalyzer
