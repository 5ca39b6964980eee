package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stratoshell/stratoshell/pkg/hwc"
	"github.com/stratoshell/stratoshell/pkg/models"
	"github.com/stratoshell/stratoshell/pkg/table"
)

// regionalRun resolves the region and client before calling fn.
func regionalRun(fn func(cmd *cobra.Command, args []string, client *hwc.Client, region string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		region, err := requireRegion()
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		return fn(cmd, args, client, region)
	}
}

type pageFlags struct {
	marker string
	limit  uint32
	offset uint32
}

func (p *pageFlags) register(cmd *cobra.Command, withOffset bool) {
	cmd.Flags().StringVar(&p.marker, "marker", "", "Resource ID to start after")
	cmd.Flags().Uint32Var(&p.limit, "limit", 0, "Maximum number of results")
	if withOffset {
		cmd.Flags().Uint32Var(&p.offset, "offset", 0, "Number of results to skip")
	}
}

func (p *pageFlags) params(cmd *cobra.Command) hwc.ListParams {
	params := hwc.ListParams{Marker: p.marker}
	if cmd.Flags().Changed("limit") {
		params.Limit = hwc.Uint32(p.limit)
	}
	if cmd.Flags().Changed("offset") {
		params.Offset = hwc.Uint32(p.offset)
	}
	return params
}

func newListCmd(short string, run func(cmd *cobra.Command, args []string, client *hwc.Client, region string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: short,
		Args:  cobra.NoArgs,
		RunE:  regionalRun(run),
	}
}

func newProjectIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project-id",
		Short: "Print the project ID scoped to the region",
		Args:  cobra.NoArgs,
		RunE: regionalRun(func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
			var id string
			err := withSpinner(cmd, "Resolving project", func() (err error) {
				id, err = client.ProjectID(cmd.Context(), region)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}),
	}
}

func newVPCCmd() *cobra.Command {
	vpcCmd := &cobra.Command{Use: "vpc", Short: "Virtual private clouds"}
	vpcCmd.AddCommand(newListCmd("List VPCs", func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
		var vpcs []models.VPC
		err := withSpinner(cmd, "Listing VPCs", func() (err error) {
			vpcs, err = client.ListVPCs(cmd.Context(), region)
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd, vpcs, []string{"ID", "Name", "CIDR", "Status"}, func(t *table.ResourceTable) {
			for _, v := range vpcs {
				t.Append(v.ID, v.Name, v.CIDR, v.Status)
			}
		})
	}))
	return vpcCmd
}

func newSubnetCmd() *cobra.Command {
	var vpcID string
	listCmd := newListCmd("List the subnets of a VPC", func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
		var subnets []models.Subnet
		err := withSpinner(cmd, "Listing subnets", func() (err error) {
			subnets, err = client.ListSubnets(cmd.Context(), region, vpcID)
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd, subnets, []string{"ID", "Name", "CIDR", "VPC", "Zone"}, func(t *table.ResourceTable) {
			for _, s := range subnets {
				t.Append(s.ID, s.Name, s.CIDR, s.VPCID, table.Deref(s.AvailabilityZone))
			}
		})
	})
	listCmd.Flags().StringVar(&vpcID, "vpc", "", "VPC ID")
	_ = listCmd.MarkFlagRequired("vpc")

	subnetCmd := &cobra.Command{Use: "subnet", Short: "VPC subnets"}
	subnetCmd.AddCommand(listCmd)
	return subnetCmd
}

func newImageCmd() *cobra.Command {
	var filters hwc.ImageListFilters
	listCmd := newListCmd("List images", func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
		var images []models.Image
		err := withSpinner(cmd, "Listing images", func() (err error) {
			images, err = client.ListImages(cmd.Context(), region, filters)
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd, images, []string{"ID", "Name", "Status", "OS", "Type"}, func(t *table.ResourceTable) {
			for _, i := range images {
				t.Append(i.ID, i.Name, i.Status, table.Deref(i.OSVersion), table.Deref(i.ImageType))
			}
		})
	})
	listCmd.Flags().StringVar(&filters.Visibility, "visibility", "", "public, private or shared")
	listCmd.Flags().StringVar(&filters.ImageType, "image-type", "", "gold, private or shared")
	listCmd.Flags().StringVar(&filters.FlavorID, "flavor", "", "Only images usable with this flavor")

	imageCmd := &cobra.Command{Use: "image", Short: "Server images"}
	imageCmd.AddCommand(listCmd)
	return imageCmd
}

func newFlavorCmd() *cobra.Command {
	flavorCmd := &cobra.Command{Use: "flavor", Short: "Server flavors"}
	flavorCmd.AddCommand(newListCmd("List flavors", func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
		var flavors []models.Flavor
		err := withSpinner(cmd, "Listing flavors", func() (err error) {
			flavors, err = client.ListFlavors(cmd.Context(), region)
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd, flavors, []string{"ID", "Name", "vCPUs", "RAM (MiB)"}, func(t *table.ResourceTable) {
			for _, f := range flavors {
				t.Append(f.ID, f.Name, f.VCPUs, strconv.FormatUint(uint64(f.RAM), 10))
			}
		})
	}))
	return flavorCmd
}

func newEIPCmd() *cobra.Command {
	var page pageFlags
	listCmd := newListCmd("List elastic IPs", func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
		var resp *models.EIPListResponse
		err := withSpinner(cmd, "Listing elastic IPs", func() (err error) {
			resp, err = client.ListEIPs(cmd.Context(), region, page.params(cmd))
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd, resp, []string{"ID", "Address", "Status", "Instance"}, func(t *table.ResourceTable) {
			for _, ip := range resp.PublicIPs {
				t.Append(table.Deref(ip.ID), table.Deref(ip.PublicIPAddress), table.Deref(ip.Status),
					table.Deref(ip.AssociateInstanceID))
			}
		})
	})
	page.register(listCmd, true)

	deleteCmd := &cobra.Command{
		Use:   "delete EIP_ID",
		Short: "Release an elastic IP",
		Args:  cobra.ExactArgs(1),
		RunE: regionalRun(func(cmd *cobra.Command, args []string, client *hwc.Client, region string) error {
			resp, err := client.DeleteEIP(cmd.Context(), region, args[0])
			if err != nil {
				return err
			}
			return renderRaw(cmd, resp)
		}),
	}

	eipCmd := &cobra.Command{Use: "eip", Short: "Elastic IPs"}
	eipCmd.AddCommand(listCmd, deleteCmd)
	return eipCmd
}

func newECSCmd() *cobra.Command {
	var page pageFlags
	listCmd := newListCmd("List servers", func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
		var resp *models.ServerListResponse
		err := withSpinner(cmd, "Listing servers", func() (err error) {
			resp, err = client.ListServers(cmd.Context(), region, page.params(cmd))
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd, resp, []string{"ID", "Name", "Status", "Public IPs", "Zone"}, func(t *table.ResourceTable) {
			for _, s := range resp.Servers {
				t.Append(s.ID, s.Name, s.Status, strings.Join(s.PublicAddresses(), ","), s.AvailabilityZone)
			}
		})
	})
	page.register(listCmd, false)

	ecsCmd := &cobra.Command{Use: "ecs", Short: "Elastic cloud servers"}
	ecsCmd.AddCommand(listCmd, newECSCreateCmd(), newECSDeleteCmd(), newECSStopCmd())
	return ecsCmd
}

func newECSCreateCmd() *cobra.Command {
	var (
		bodyFile string
		params   hwc.CreateServerParams
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a server from a JSON body or from flags",
		Long: `Create a server. With --body the file is posted as is. Otherwise the
request is built from the flags; an empty --name or "ecs-<RANDOM-VALUE>"
generates a timestamped name.`,
		Args: cobra.NoArgs,
		RunE: regionalRun(func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
			var body []byte
			var err error
			if bodyFile != "" {
				body, err = os.ReadFile(bodyFile)
				if err != nil {
					return fmt.Errorf("failed to read request body: %w", err)
				}
			} else {
				body, err = hwc.BuildCreateServerBody(params, time.Now())
				if err != nil {
					return err
				}
			}

			var resp *hwc.RawResponse
			err = withSpinner(cmd, "Creating server", func() (err error) {
				resp, err = client.CreateServer(cmd.Context(), region, body)
				return err
			})
			if err != nil {
				return err
			}
			return renderRaw(cmd, resp)
		}),
	}

	flags := createCmd.Flags()
	flags.StringVar(&bodyFile, "body", "", "File holding the complete JSON request body")
	flags.StringVar(&params.Name, "name", "", "Server name")
	flags.StringVar(&params.ImageID, "image", "", "Image ID")
	flags.StringVar(&params.FlavorID, "flavor", "", "Flavor ID")
	flags.StringVar(&params.VPCID, "vpc", "", "VPC ID")
	flags.StringVar(&params.SubnetID, "subnet", "", "Subnet ID")
	flags.StringVar(&params.RootVolumeType, "root-volume-type", "SSD", "Root volume type")
	flags.Uint32Var(&params.RootVolumeSize, "root-volume-size", 40, "Root volume size in GiB")
	flags.BoolVar(&params.AllocateEIP, "eip", false, "Allocate an elastic IP for the server")
	createCmd.MarkFlagsMutuallyExclusive("body", "image")
	return createCmd
}

func newECSDeleteCmd() *cobra.Command {
	var deleteEIP, deleteVolume bool
	deleteCmd := &cobra.Command{
		Use:   "delete SERVER_ID",
		Short: "Delete a server",
		Args:  cobra.ExactArgs(1),
		RunE: regionalRun(func(cmd *cobra.Command, args []string, client *hwc.Client, region string) error {
			resp, err := client.DeleteServer(cmd.Context(), region, args[0], deleteEIP, deleteVolume)
			if err != nil {
				return err
			}
			return renderRaw(cmd, resp)
		}),
	}
	deleteCmd.Flags().BoolVar(&deleteEIP, "delete-eip", false, "Also release the server's elastic IPs")
	deleteCmd.Flags().BoolVar(&deleteVolume, "delete-volume", false, "Also delete the data disks")
	return deleteCmd
}

func newECSStopCmd() *cobra.Command {
	var hard bool
	stopCmd := &cobra.Command{
		Use:   "stop SERVER_ID",
		Short: "Stop a server",
		Args:  cobra.ExactArgs(1),
		RunE: regionalRun(func(cmd *cobra.Command, args []string, client *hwc.Client, region string) error {
			stopType := hwc.StopSoft
			if hard {
				stopType = hwc.StopHard
			}
			resp, err := client.StopServer(cmd.Context(), region, args[0], stopType)
			if err != nil {
				return err
			}
			return renderRaw(cmd, resp)
		}),
	}
	stopCmd.Flags().BoolVar(&hard, "hard", false, "Power off instead of shutting down")
	return stopCmd
}

func newEVSCmd() *cobra.Command {
	var page pageFlags
	listCmd := newListCmd("List volumes", func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
		var resp *models.VolumeListResponse
		err := withSpinner(cmd, "Listing volumes", func() (err error) {
			resp, err = client.ListVolumes(cmd.Context(), region, page.params(cmd))
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd, resp, []string{"ID", "Name", "Status", "Size (GiB)", "Type", "Bootable"}, func(t *table.ResourceTable) {
			for _, v := range resp.Volumes {
				t.Append(table.Deref(v.ID), table.Deref(v.Name), table.Deref(v.Status),
					v.Size.String(), table.Deref(v.VolumeType), v.Bootable.String())
			}
		})
	})
	page.register(listCmd, true)

	evsCmd := &cobra.Command{Use: "evs", Short: "Block storage volumes"}
	evsCmd.AddCommand(listCmd)
	return evsCmd
}

func newNATCmd() *cobra.Command {
	natCmd := &cobra.Command{Use: "nat", Short: "NAT gateways"}
	natCmd.AddCommand(newListCmd("List NAT gateways", func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
		var gateways []models.NATGateway
		err := withSpinner(cmd, "Listing NAT gateways", func() (err error) {
			gateways, err = client.ListNATGateways(cmd.Context(), region)
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd, gateways, []string{"ID", "Name", "Spec", "Status"}, func(t *table.ResourceTable) {
			for _, g := range gateways {
				t.Append(table.Deref(g.ID), table.Deref(g.Name), table.Deref(g.Spec), table.Deref(g.Status))
			}
		})
	}))
	return natCmd
}

func newCCECmd() *cobra.Command {
	cceCmd := &cobra.Command{Use: "cce", Short: "Container clusters"}
	cceCmd.AddCommand(newListCmd("List clusters", func(cmd *cobra.Command, _ []string, client *hwc.Client, region string) error {
		var clusters []models.Cluster
		err := withSpinner(cmd, "Listing clusters", func() (err error) {
			clusters, err = client.ListClusters(cmd.Context(), region)
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd, clusters, []string{"UID", "Name", "Version", "Phase"}, func(t *table.ResourceTable) {
			for _, c := range clusters {
				t.Append(c.UID(), c.Name(), c.Version(), c.Phase())
			}
		})
	}))
	return cceCmd
}
