package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chort/cuckoo/internal/config"
	"github.com/chort/cuckoo/internal/plugins"
)

func newInitCmd(root *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter processing.yml listing every registered plugin",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolvePath(root.ConfigPath)

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}

			body, err := starterConfig(plugins.Builtin())
			if err != nil {
				return err
			}

			if err := os.WriteFile(path, body, 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}

func starterConfig(registry *plugins.Registry) ([]byte, error) {
	type section struct {
		Enabled bool `yaml:"enabled"`
	}

	modules, err := registry.ProcessingModules()
	if err != nil {
		return nil, err
	}
	signatures, err := registry.Signatures()
	if err != nil {
		return nil, err
	}

	starter := map[string]map[string]section{
		"modules":    {},
		"signatures": {},
	}
	for _, descriptor := range modules {
		starter["modules"][descriptor.Name] = section{Enabled: true}
	}
	for _, descriptor := range signatures {
		starter["signatures"][descriptor.Name] = section{Enabled: true}
	}

	return yaml.Marshal(starter)
}
