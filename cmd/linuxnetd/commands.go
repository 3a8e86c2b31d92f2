package main

import (
	"fmt"

	"github.com/esnrhm/LinuxNetAPI/internal/application/usecases"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/container"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	listAllFlag bool

	configureIP      string
	configureNetmask string
	configureGateway string
	configureDNS     []string
	configureDHCP    bool

	validateAllFlag bool
	redetectFlag    bool
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces [name]",
	Short: "List configurable interfaces, or show one interface",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(c *container.Container, _ *logrus.Logger) error {
			query := c.GetQueryUseCase()
			if len(args) == 1 {
				iface, err := query.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, iface)
			}

			list := query.ListPublic
			if listAllFlag {
				list = query.ListAll
			}
			ifaces, err := list(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, ifaces)
		})
	},
}

var configureCmd = &cobra.Command{
	Use:   "configure <name>",
	Short: "Apply a static or DHCP configuration live and persist it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(c *container.Container, _ *logrus.Logger) error {
			result, err := c.GetConfigureUseCase().Execute(cmd.Context(), usecases.ConfigureInterfaceInput{
				Name: args[0],
				Config: entities.InterfaceConfig{
					IPAddress:  configureIP,
					Netmask:    configureNetmask,
					Gateway:    configureGateway,
					DNSServers: configureDNS,
					DHCP:       configureDHCP,
				},
			})
			if result != nil {
				if printErr := printJSON(cmd, result); printErr != nil {
					return printErr
				}
			}
			return err
		})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <name>",
	Short: "Remove the generated configuration artifacts of an interface",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(c *container.Container, _ *logrus.Logger) error {
			result, err := c.GetCleanupUseCase().Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [name]",
	Short: "Validate the generated artifact of an interface, or all artifacts with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !validateAllFlag && len(args) == 0 {
			return fmt.Errorf("interface name required unless --all is set")
		}
		return withContainer(func(c *container.Container, _ *logrus.Logger) error {
			artifacts := c.GetArtifactsUseCase()
			if validateAllFlag {
				reports, err := artifacts.ValidateAll(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, reports)
			}

			report, err := artifacts.Validate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := printJSON(cmd, report); err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("artifact %s is invalid: %s", report.Path, report.Error)
			}
			return nil
		})
	},
}

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Show the detected configuration backend and container status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(c *container.Container, _ *logrus.Logger) error {
			query := c.GetQueryUseCase()
			detect := query.BackendKind
			if redetectFlag {
				detect = query.Redetect
			}
			info, err := detect(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, struct {
				*usecases.BackendInfo
				Container *usecases.ContainerStatus `json:"container"`
			}{info, query.ContainerStatus(cmd.Context())})
		})
	},
}

func init() {
	interfacesCmd.Flags().BoolVarP(&listAllFlag, "all", "a", false, "Include virtual interfaces")

	configureCmd.Flags().StringVar(&configureIP, "ip", "", "Static IPv4 address")
	configureCmd.Flags().StringVar(&configureNetmask, "netmask", "", "Netmask as dotted quad or prefix length")
	configureCmd.Flags().StringVar(&configureGateway, "gateway", "", "Default gateway")
	configureCmd.Flags().StringSliceVar(&configureDNS, "dns", nil, "DNS servers, comma separated")
	configureCmd.Flags().BoolVar(&configureDHCP, "dhcp", false, "Use DHCP instead of a static address")
	configureCmd.MarkFlagsMutuallyExclusive("dhcp", "ip")

	validateCmd.Flags().BoolVar(&validateAllFlag, "all", false, "Validate every artifact of the active backend")
	backendCmd.Flags().BoolVar(&redetectFlag, "redetect", false, "Drop the cached detection first")

	rootCmd.AddCommand(interfacesCmd, configureCmd, cleanupCmd, validateCmd, backendCmd)
}
