package network

import (
	stderrors "errors"
	"os"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// familyV4 selects IPv4 addresses and routes in netlink queries
const familyV4 = unix.AF_INET

// Netlinker abstracts the netlink calls used for enumeration and live apply
type Netlinker interface {
	LinkList() ([]netlink.Link, error)
	LinkByName(name string) (netlink.Link, error)
	LinkSetUp(link netlink.Link) error

	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	AddrAdd(link netlink.Link, addr *netlink.Addr) error
	AddrDel(link netlink.Link, addr *netlink.Addr) error

	// RouteList lists routes of link, or of every link when link is nil
	RouteList(link netlink.Link, family int) ([]netlink.Route, error)
	RouteReplace(route *netlink.Route) error
}

// netlinkError converts a netlink failure into a domain error
func netlinkError(message string, err error) error {
	if isPermissionErrno(err) {
		return errors.NewPermissionError(message, err)
	}
	return errors.NewCommandExecutionError(message, err)
}

func isPermissionErrno(err error) bool {
	return stderrors.Is(err, unix.EPERM) || stderrors.Is(err, unix.EACCES)
}

// fileError converts a file system failure into a domain error
func fileError(message string, err error) error {
	if stderrors.Is(err, os.ErrPermission) || isPermissionErrno(err) {
		return errors.NewPermissionError(message, err)
	}
	return errors.NewPersistenceError(message, err)
}
