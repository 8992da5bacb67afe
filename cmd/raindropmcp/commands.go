package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"raindropmcp/internal/app"
	"raindropmcp/internal/buildinfo"
	"raindropmcp/internal/domain"
)

func newManifestCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the server manifest without contacting Raindrop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := app.NewOfflineServer(domain.TransportStdio)
			if err != nil {
				return err
			}
			manifest := srv.Manifest()
			switch strings.ToLower(format) {
			case "", "json":
				return writeJSON(cmd.OutOrStdout(), manifest)
			case "yaml", "yml":
				return writeYAML(cmd.OutOrStdout(), manifest)
			default:
				return fmt.Errorf("unsupported format %q (json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json|yaml)")
	return cmd
}

func newToolsCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := app.NewOfflineServer(domain.TransportStdio)
			if err != nil {
				return err
			}
			tools := srv.ListTools()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), srv.Manifest().Tools)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tKIND\tTITLE")
			for _, tool := range tools {
				kind := "read"
				if tool.Destructive {
					kind = "write"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", tool.Name, kind, tool.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output JSON including schemas")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "raindropmcp %s (build %s, %s)\n",
				buildinfo.Version, buildinfo.Build, runtime.Version())
			return err
		},
	}
}

func writeJSON(w io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeYAML(w io.Writer, value any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return err
	}
	return enc.Close()
}
