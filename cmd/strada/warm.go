package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/strada-dev/strada/pkg/prefetch"
)

func warmCmd() *cobra.Command {
	var (
		timeout  time.Duration
		basePath string
	)

	cmd := &cobra.Command{
		Use:   "warm <origin>",
		Short: "Call the batch prefetch endpoint and report what it serves",
		Long: `Warm requests <origin><base-path>` + prefetch.BatchPath + ` exactly as the
engine's batch prefetch strategy does and summarizes each entry: route,
descriptor identity, source size, and layout chain. Use it to verify the
endpoint before enabling batch prefetching.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin := strings.TrimSuffix(args[0], "/")
			url := origin + basePath + prefetch.BatchPath
			client := &http.Client{Timeout: timeout}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return fmt.Errorf("%s returned %s", url, resp.Status)
			}

			var entries []prefetch.BatchEntry
			if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
				return fmt.Errorf("batch payload is not valid JSON: %w", err)
			}

			success("%d entries from %s", len(entries), url)
			for _, entry := range entries {
				if entry.PageData == nil {
					warn("%s: entry has no descriptor", entry.Route)
					continue
				}
				info("%s → %s (%d bytes, %d layouts)",
					entry.Route, entry.PageData.RouteID, len(entry.Body), len(entry.Layouts))
				if entry.Body == "" {
					warn("%s: entry has no module source", entry.Route)
				}
				for _, layoutPath := range entry.PageData.Layouts {
					if _, ok := entry.Layouts[layoutPath]; !ok {
						warn("%s: chain names %s but no source is included", entry.Route, layoutPath)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Request timeout")
	cmd.Flags().StringVarP(&basePath, "base-path", "b", "", "Application base path")

	return cmd
}
