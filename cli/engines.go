package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/compozy/jsswitch/engine/jsengine"
	"github.com/compozy/jsswitch/engine/settings"
	"github.com/compozy/jsswitch/pkg/config"
	"github.com/compozy/jsswitch/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// EngineInfo describes one registered engine.
type EngineInfo struct {
	Name                       string `json:"name"                         yaml:"name"`
	Engine                     string `json:"engine,omitempty"             yaml:"engine,omitempty"`
	Version                    string `json:"version,omitempty"            yaml:"version,omitempty"`
	SupportsScriptInterruption bool   `json:"supports_script_interruption" yaml:"supports_script_interruption"`
	SupportsGarbageCollection  bool   `json:"supports_garbage_collection"  yaml:"supports_garbage_collection"`
	Available                  bool   `json:"available"                    yaml:"available"`
	Error                      string `json:"error,omitempty"              yaml:"error,omitempty"`
}

func EnginesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engines",
		Short: "List registered engines and their capabilities",
		Args:  cobra.NoArgs,
		RunE:  runEngines,
	}
	cmd.Flags().String("format", OutputFormatText, "Output format (text, json, yaml)")
	return cmd
}

func runEngines(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if err := validateFormat(format); err != nil {
		return err
	}
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	log := logger.FromContext(ctx)

	names := jsengine.Names()
	infos := make([]EngineInfo, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			infos[i] = probeEngine(ctx, name, cfg.Settings, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format != OutputFormatText {
		return writeValue(out, format, infos)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tENGINE\tVERSION\tINTERRUPT\tGC\tSTATUS")
	for _, info := range infos {
		status := "ok"
		if !info.Available {
			status = "unavailable"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\t%s\n",
			info.Name, info.Engine, info.Version,
			info.SupportsScriptInterruption, info.SupportsGarbageCollection, status)
	}
	return tw.Flush()
}

// probeEngine constructs and disposes one engine to read its capabilities.
func probeEngine(ctx context.Context, name string, s settings.Settings, log logger.Logger) EngineInfo {
	info := EngineInfo{Name: name}
	e, err := jsengine.New(ctx, name, s)
	if err != nil {
		log.Debug("Engine unavailable", "engine", name, "error", err)
		info.Error = err.Error()
		return info
	}
	defer e.Dispose()
	info.Engine = e.Name()
	info.Version = e.Version()
	info.SupportsScriptInterruption = e.SupportsScriptInterruption()
	info.SupportsGarbageCollection = e.SupportsGarbageCollection()
	info.Available = true
	return info
}
