// Package app provides the command line interface of the SDMX query tool.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leourb/sdmx-query-tool/internal/config"
	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/logger"
	"github.com/leourb/sdmx-query-tool/internal/tabular"
	"github.com/leourb/sdmx-query-tool/internal/versions"
	"github.com/leourb/sdmx-query-tool/pkg/query"
)

var rootCmd = &cobra.Command{
	Use:   "sdmxq",
	Short: "Query statistical data from SDMX providers",
	Long: `sdmxq retrieves statistical data and metadata from SDMX web services
(ECB, INSEE, OECD, IMF, and user-defined sources) and renders every result
as a table: dimension columns first, attribute columns next, the observation
value last.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Initialize(viper.GetBool("debug"))
	},
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML file defining additional sources")
	rootCmd.PersistentFlags().Duration("timeout", httpclient.DefaultTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().Uint("retries", 0, "Retry transient HTTP failures up to this many times")
	rootCmd.PersistentFlags().String("format", "table", "Output format (table or csv)")

	for _, flag := range []string{"debug", "config", "timeout", "retries", "format"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to bind %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(paramsCmd)
	rootCmd.AddCommand(dataflowsCmd)
	rootCmd.AddCommand(newCodesCmd())
	rootCmd.AddCommand(newDataCmd())
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// newClient assembles the query client from the persistent flags.
func newClient() (*query.Client, error) {
	opts := []httpclient.Option{
		httpclient.WithTimeout(viper.GetDuration("timeout")),
	}
	if retries := viper.GetUint("retries"); retries > 0 {
		opts = append(opts, httpclient.WithRetries(retries))
	}
	transport := httpclient.NewDefaultClient(opts...)

	queryOpts := []query.Option{query.WithHTTPClient(transport)}
	if path := viper.GetString("config"); path != "" {
		cfg, err := config.LoadConfig(config.WithConfigPath(path))
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		queryOpts = append(queryOpts, query.WithConfig(cfg))
	}
	return query.New(queryOpts...), nil
}

// emit renders a table in the selected output format.
func emit(table *tabular.Table) error {
	switch format := viper.GetString("format"); format {
	case "csv":
		return table.WriteCSV(os.Stdout)
	case "table":
		return table.Render(os.Stdout)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the available data sources",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		for _, id := range c.Sources() {
			fmt.Println(id)
		}
		return nil
	},
}

var paramsCmd = &cobra.Command{
	Use:   "params SOURCE",
	Short: "Show the query parameters a source accepts",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		params, err := c.AvailableParameters(args[0])
		if err != nil {
			return err
		}

		t := tabular.New("PARAMETER", "REQUIRED", "ALLOWED", "DESCRIPTION")
		for _, p := range params {
			row := tabular.Row{
				"PARAMETER":   p.Name,
				"REQUIRED":    fmt.Sprintf("%t", p.Required),
				"DESCRIPTION": p.Description,
			}
			if len(p.Allowed) > 0 {
				row["ALLOWED"] = strings.Join(p.Allowed, ", ")
			}
			t.AddRow(row)
		}
		return emit(t)
	},
}

var dataflowsCmd = &cobra.Command{
	Use:   "dataflows SOURCE",
	Short: "List the dataflows a source publishes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		table, err := c.ListDataflows(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return emit(table)
	},
}

func newCodesCmd() *cobra.Command {
	var forDataflow bool

	cmd := &cobra.Command{
		Use:   "codes SOURCE ID",
		Short: "Show one code list of a source",
		Long: `Show one code list of a source.

By default ID names a code list. With --dataflow, ID names a dataflow and
every code list referenced by its data structure is shown.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			var table *tabular.Table
			if forDataflow {
				table, err = c.ListCodesForDataflow(cmd.Context(), args[0], args[1])
			} else {
				table, err = c.ListCodes(cmd.Context(), args[0], args[1])
			}
			if err != nil {
				return err
			}
			return emit(table)
		},
	}
	cmd.Flags().BoolVar(&forDataflow, "dataflow", false, "Treat ID as a dataflow and list the code lists its structure references")
	return cmd
}

func newDataCmd() *cobra.Command {
	var rawParams []string

	cmd := &cobra.Command{
		Use:   "data SOURCE DATAFLOW",
		Short: "Retrieve observations for a dataflow",
		Long: `Retrieve observations for one dataflow of one source.

Query parameters are passed as repeated --param flags, e.g.:

  sdmxq data ECB EXR --param start_period=2020-01 --param detail=dataonly

Run "sdmxq params SOURCE" to see which parameters a source accepts.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			started := time.Now()
			table, err := c.RetrieveData(cmd.Context(), args[0], args[1], params)
			if err != nil {
				return err
			}
			logger.Debugf("retrieved %d observations in %s", table.Len(), time.Since(started))
			return emit(table)
		},
	}
	cmd.Flags().StringArrayVar(&rawParams, "param", nil, "Query parameter as name=value (repeatable)")
	return cmd
}

// parseParams converts repeated name=value flags into a parameter map.
func parseParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}
		params[name] = value
	}
	return params, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := versions.Current()
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		if asJSON {
			output, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(output))
			return nil
		}
		fmt.Printf("sdmxq %s (commit %s, built %s, %s, %s)\n",
			info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "Output version information as JSON")
}
