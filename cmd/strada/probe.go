package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/strada-dev/strada/pkg/page"
)

func probeCmd() *cobra.Command {
	var (
		timeout time.Duration
		raw     bool
	)

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Fetch a page and print its embedded page descriptor",
		Long: `Probe fetches a server-rendered page the way the engine does and
prints the page descriptor found in its reserved data block. Use it to
verify that a route embeds a well-formed descriptor before the engine
consumes it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			client := &http.Client{Timeout: timeout}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "text/html")

			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return fmt.Errorf("%s returned %s", url, resp.Status)
			}

			doc, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			desc, err := page.ExtractDescriptor(doc)
			if err != nil {
				return fmt.Errorf("no usable descriptor in %s: %w", url, err)
			}

			if raw {
				out, err := json.MarshalIndent(desc, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			success("descriptor found")
			info("route:   %s", desc.RouteID)
			info("mode:    %s", desc.Mode)
			if desc.RoutePath != "" {
				info("pattern: %s", desc.RoutePath)
			}
			if len(desc.Layouts) > 0 {
				info("layouts: %v (most specific first)", desc.Layouts)
			}
			if desc.DisableLayouts {
				warn("layouts disabled for this route")
			}
			if desc.Meta != nil && desc.Meta.Title != "" {
				info("title:   %s", desc.Meta.Title)
			}
			if len(desc.LayoutData) > 0 && len(desc.LayoutData) != len(desc.Layouts) {
				warn("layoutData has %d entries for %d layouts", len(desc.LayoutData), len(desc.Layouts))
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "Request timeout")
	cmd.Flags().BoolVar(&raw, "json", false, "Print the descriptor as JSON")

	return cmd
}
