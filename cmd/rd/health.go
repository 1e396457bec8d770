package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alfredjeanlab/records/internal/client"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the records service",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		grpcAddr, _ := cmd.Flags().GetString("grpc")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		want := "ok"
		var status string
		var err error
		if grpcAddr != "" {
			want = "SERVING"
			status, err = grpcHealth(ctx, grpcAddr)
		} else {
			status, err = recordsClient.Health(ctx)
		}
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			printJSON(map[string]string{"status": status})
		} else {
			fmt.Printf("Health: %s\n", status)
		}

		if status != want {
			return fmt.Errorf("unhealthy: %s", status)
		}
		return nil
	},
}

func grpcHealth(ctx context.Context, addr string) (string, error) {
	c, err := client.NewGRPCHealthClient(addr)
	if err != nil {
		return "", err
	}
	defer c.Close()
	return c.Health(ctx)
}

func init() {
	healthCmd.Flags().String("grpc", "", "check the gRPC health service at this address instead of HTTP")
}
