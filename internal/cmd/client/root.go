package client

import (
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewRoot constructs a root Cobra command for the Beacon client.
// It registers the event command group.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "beacon",
		Short: "Beacon client commands",
	}
	root.AddCommand(NewEventCommand(baseURL))
	return root
}
