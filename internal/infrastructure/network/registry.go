package network

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/services"
	"github.com/esnrhm/LinuxNetAPI/pkg/utils"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

// ModeResolver reports the persisted address mode of an interface
type ModeResolver interface {
	ModeOf(ctx context.Context, name string) entities.AddressMode
}

// NetlinkRegistry enumerates kernel interfaces through netlink.
// Every call reads the kernel afresh.
type NetlinkRegistry struct {
	netlinker  Netlinker
	classifier *services.InterfaceClassifier
	modes      ModeResolver
	retryDelay time.Duration
	logger     *logrus.Logger
}

// NewNetlinkRegistry creates a new NetlinkRegistry. modes may be nil.
func NewNetlinkRegistry(nl Netlinker, classifier *services.InterfaceClassifier, modes ModeResolver, retryDelay time.Duration, logger *logrus.Logger) *NetlinkRegistry {
	return &NetlinkRegistry{
		netlinker:  nl,
		classifier: classifier,
		modes:      modes,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// SetModeResolver attaches the persisted-mode source after construction
func (r *NetlinkRegistry) SetModeResolver(modes ModeResolver) {
	r.modes = modes
}

// ListAll returns every kernel interface sorted by name
func (r *NetlinkRegistry) ListAll(ctx context.Context) ([]entities.NetworkInterface, error) {
	links, err := r.listLinks(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]entities.NetworkInterface, 0, len(links))
	for _, link := range links {
		result = append(result, r.describe(ctx, link))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result, nil
}

// ListPublic returns the interfaces eligible for configuration
func (r *NetlinkRegistry) ListPublic(ctx context.Context) ([]entities.NetworkInterface, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	public := make([]entities.NetworkInterface, 0, len(all))
	for _, iface := range all {
		if iface.IsPublic() {
			public = append(public, iface)
		}
	}
	return public, nil
}

// Get returns one interface or a NotFoundError
func (r *NetlinkRegistry) Get(ctx context.Context, name string) (*entities.NetworkInterface, error) {
	links, err := r.listLinks(ctx)
	if err != nil {
		return nil, err
	}

	for _, link := range links {
		if link.Attrs().Name == name {
			iface := r.describe(ctx, link)
			return &iface, nil
		}
	}

	return nil, errors.NewNotFoundError(fmt.Sprintf("interface %s not found", name))
}

// Routes returns the IPv4 routing table
func (r *NetlinkRegistry) Routes(ctx context.Context) ([]entities.Route, error) {
	links, err := r.listLinks(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(links))
	for _, link := range links {
		names[link.Attrs().Index] = link.Attrs().Name
	}

	var routes []netlink.Route
	err = utils.RetryWithBackoff(ctx, utils.ProbeRetryConfig(r.retryDelay), func() error {
		var listErr error
		routes, listErr = r.netlinker.RouteList(nil, familyV4)
		return listErr
	})
	if err != nil {
		return nil, netlinkError("failed to list routes", err)
	}

	result := make([]entities.Route, 0, len(routes))
	for _, route := range routes {
		entry := entities.Route{
			Destination: "default",
			Device:      names[route.LinkIndex],
			Protocol:    protocolName(int(route.Protocol)),
			Scope:       scopeName(uint8(route.Scope)),
			Metric:      route.Priority,
		}
		if !isDefaultRoute(route) {
			entry.Destination = route.Dst.String()
		}
		if route.Gw != nil {
			entry.Gateway = route.Gw.String()
		}
		if route.Src != nil {
			entry.Source = route.Src.String()
		}
		result = append(result, entry)
	}

	return result, nil
}

// listLinks lists links, retrying once on failure
func (r *NetlinkRegistry) listLinks(ctx context.Context) ([]netlink.Link, error) {
	var links []netlink.Link
	err := utils.RetryWithBackoff(ctx, utils.ProbeRetryConfig(r.retryDelay), func() error {
		var listErr error
		links, listErr = r.netlinker.LinkList()
		return listErr
	})
	if err != nil {
		return nil, netlinkError("failed to enumerate interfaces", err)
	}
	return links, nil
}

func (r *NetlinkRegistry) describe(ctx context.Context, link netlink.Link) entities.NetworkInterface {
	attrs := link.Attrs()
	iface := entities.NetworkInterface{
		Name:      attrs.Name,
		Kind:      r.classifier.Classify(attrs.Name),
		LinkType:  link.Type(),
		MTU:       attrs.MTU,
		State:     linkState(attrs),
		Addresses: []string{},
		Mode:      entities.ModeUnknown,
	}
	if len(attrs.HardwareAddr) > 0 {
		iface.MacAddress = attrs.HardwareAddr.String()
	}

	addrs, err := r.netlinker.AddrList(link, familyV4)
	if err != nil {
		r.logger.WithError(err).WithField("interface", attrs.Name).Warn("Failed to list addresses")
	}
	for _, addr := range addrs {
		if addr.IPNet != nil {
			iface.Addresses = append(iface.Addresses, addr.IPNet.String())
		}
	}

	routes, err := r.netlinker.RouteList(link, familyV4)
	if err != nil {
		r.logger.WithError(err).WithField("interface", attrs.Name).Warn("Failed to list routes")
	}
	for _, route := range routes {
		if isDefaultRoute(route) && route.Gw != nil {
			iface.Gateway = route.Gw.String()
			break
		}
	}

	if r.modes != nil {
		iface.Mode = r.modes.ModeOf(ctx, attrs.Name)
	}

	return iface
}

func linkState(attrs *netlink.LinkAttrs) entities.LinkState {
	if attrs.OperState == netlink.OperUp {
		return entities.LinkStateUp
	}
	// loopback and some virtual links report unknown while administratively up
	if attrs.OperState == netlink.OperUnknown && attrs.Flags&net.FlagUp != 0 {
		return entities.LinkStateUp
	}
	return entities.LinkStateDown
}

func isDefaultRoute(route netlink.Route) bool {
	if route.Dst == nil {
		return true
	}
	ones, _ := route.Dst.Mask.Size()
	return ones == 0 && route.Dst.IP.IsUnspecified()
}

func protocolName(proto int) string {
	switch proto {
	case 2:
		return "kernel"
	case 3:
		return "boot"
	case 4:
		return "static"
	case 16:
		return "dhcp"
	default:
		return strconv.Itoa(proto)
	}
}

func scopeName(scope uint8) string {
	switch scope {
	case 0:
		return "global"
	case 253:
		return "link"
	case 254:
		return "host"
	default:
		return strconv.Itoa(int(scope))
	}
}
