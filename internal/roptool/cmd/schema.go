package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"roptool/internal/config"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "schema",
		Short:  "Generate JSON schema for configuration",
		Long:   "Generate JSON schema for the roptool configuration file",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reflector := new(jsonschema.Reflector)
			bts, err := json.MarshalIndent(reflector.Reflect(&config.File{}), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bts))
			return nil
		},
	}
}
