package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/gateway"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	var (
		level string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Fetch recent logs from a running gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				cfg = config.Defaults()
			}

			auth := gateway.ResolveAuth(cfg.Gateway.Auth)
			port := cfg.Gateway.Port
			if port == 0 {
				port = 18789
			}

			endpoint := fmt.Sprintf("http://127.0.0.1:%d/api/logs", port)
			query := url.Values{}
			if level != "" {
				query.Set("level", level)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if len(query) > 0 {
				endpoint += "?" + query.Encode()
			}

			req, err := http.NewRequest(http.MethodGet, endpoint, nil)
			if err != nil {
				return err
			}
			if auth.Token != "" {
				req.Header.Set("Authorization", "Bearer "+auth.Token)
			}

			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("gateway not reachable on port %d: %w", port, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				var body struct {
					Error string `json:"error"`
				}
				json.NewDecoder(resp.Body).Decode(&body)
				return fmt.Errorf("gateway returned %s: %s", resp.Status, body.Error)
			}

			var body struct {
				Records []logging.Record `json:"records"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}

			for _, r := range body.Records {
				fmt.Println(r.Line())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "info", "minimum log level")
	cmd.Flags().IntVar(&limit, "limit", 0, "show only the last N records")

	return cmd
}
