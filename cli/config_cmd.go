package cli

import (
	"fmt"

	"github.com/javanhut/commitscope/internal/colors"
	"github.com/javanhut/commitscope/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get and set configuration options",
	Long: `Get and set commitscope configuration options.

Configuration can be set at two levels:
- Global (~/.commitscopeconfig) - applies everywhere
- Workspace (.commitscope/config) - applies to the current directory only

Examples:
  commitscope config store.compress false
  commitscope config --global color.ui false
  commitscope config --list
  commitscope config store.dir`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

var (
	configGlobal bool
	configList   bool
)

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "Use global config file")
	configCmd.Flags().BoolVar(&configList, "list", false, "List all configuration")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configList {
		return listConfig()
	}

	switch len(args) {
	case 1:
		return getConfigValue(args[0])
	case 2:
		return setConfigValue(args[0], args[1], configGlobal)
	default:
		return fmt.Errorf("invalid usage. See: commitscope config --help")
	}
}

func listConfig() error {
	fmt.Println(colors.SectionHeader("Configuration:"))
	for _, key := range config.Keys {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		if value == "" {
			value = colors.Gray("(not set)")
		} else {
			value = colors.InfoText(value)
		}
		fmt.Printf("  %s = %s\n", key, value)
	}
	return nil
}

func getConfigValue(key string) error {
	value, err := cfg.Get(key)
	if err != nil {
		return err
	}

	if value == "" {
		fmt.Printf("%s is %s\n", key, colors.Gray("(not set)"))
	} else {
		fmt.Println(value)
	}
	return nil
}

func setConfigValue(key, value string, global bool) error {
	if err := (config.Options{}).SetValue(key, value, global); err != nil {
		return err
	}

	scope := "workspace"
	if global {
		scope = "global"
	}

	fmt.Printf("%s %s config: %s = %s\n",
		colors.SuccessText("Set"),
		scope,
		colors.Bold(key),
		colors.InfoText(value))
	return nil
}
