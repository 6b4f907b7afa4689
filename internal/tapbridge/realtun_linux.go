// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package tapbridge

import (
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"strconv"
	"unsafe"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"netfabric.dev/simulator/internal/simerr"
)

const (
	cloneDevicePath = "/dev/net/tun"
	ifReqSize       = unix.IFNAMSIZ + 64
)

// RealTun is a Tap backed by a kernel TUN device, created with
// IFF_TUN|IFF_NO_PI and configured through netlink.
type RealTun struct {
	fd   *os.File
	link netlink.Link
	mtu  uint32
}

// OpenRealTun clones /dev/net/tun, binds it to cfg.Name via TUNSETIFF, and
// assigns cfg's address through netlink, bringing the interface up.
func OpenRealTun(cfg RealTunConfig, mtu uint32) (*RealTun, error) {
	fd, err := unix.Open(cloneDevicePath, os.O_RDWR, 0)
	if err != nil {
		return nil, simerr.Wrap(err, simerr.KindTapIO, "failed to open "+cloneDevicePath)
	}
	file := os.NewFile(uintptr(fd), cloneDevicePath)

	var ifr [ifReqSize]byte
	if len(cfg.Name) >= unix.IFNAMSIZ {
		file.Close()
		return nil, simerr.New(simerr.KindTapIO, "interface name too long: "+cfg.Name)
	}
	copy(ifr[:], cfg.Name)
	var flags uint16 = unix.IFF_TUN | unix.IFF_NO_PI
	binary.LittleEndian.PutUint16(ifr[unix.IFNAMSIZ:], flags)

	if _, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		file.Fd(),
		uintptr(unix.TUNSETIFF),
		uintptr(unsafe.Pointer(&ifr[0])),
	); errno != 0 {
		file.Close()
		return nil, simerr.Wrap(errno, simerr.KindTapIO, "TUNSETIFF failed for "+cfg.Name)
	}

	link, err := netlink.LinkByName(cfg.Name)
	if err != nil {
		file.Close()
		return nil, simerr.Wrap(err, simerr.KindTapIO, "failed to look up link "+cfg.Name)
	}

	if mtu != 0 {
		if err := netlink.LinkSetMTU(link, int(mtu)); err != nil {
			file.Close()
			return nil, simerr.Wrap(err, simerr.KindTapIO, "failed to set MTU on "+cfg.Name)
		}
	}

	if err := assignAddress(link, cfg); err != nil {
		file.Close()
		return nil, err
	}

	if err := netlink.LinkSetUp(link); err != nil {
		file.Close()
		return nil, simerr.Wrap(err, simerr.KindTapIO, "failed to bring up "+cfg.Name)
	}

	return &RealTun{fd: file, link: link, mtu: mtu}, nil
}

func assignAddress(link netlink.Link, cfg RealTunConfig) error {
	if cfg.Address == "" {
		return nil
	}
	prefixLen := 24
	if cfg.IsIPv6 {
		prefixLen = 64
		if cfg.Netmask != "" {
			n, err := strconv.Atoi(cfg.Netmask)
			if err != nil || n < 0 || n > 128 {
				return simerr.New(simerr.KindConfigInvalidAddress, "invalid IPv6 prefix length for "+cfg.Name)
			}
			prefixLen = n
		}
	} else if cfg.Netmask != "" {
		mask := netMaskToPrefixLen(cfg.Netmask)
		if mask < 0 {
			return simerr.New(simerr.KindConfigInvalidAddress, "invalid IPv4 netmask for "+cfg.Name)
		}
		prefixLen = mask
	}

	addr, err := netlink.ParseAddr(fmt.Sprintf("%s/%d", cfg.Address, prefixLen))
	if err != nil {
		return simerr.Wrap(err, simerr.KindConfigInvalidAddress, "failed to parse address for "+cfg.Name)
	}
	if err := netlink.AddrAdd(link, addr); err != nil {
		return simerr.Wrap(err, simerr.KindTapIO, "failed to assign address on "+cfg.Name)
	}
	return nil
}

func netMaskToPrefixLen(dotted string) int {
	ip := net.ParseIP(dotted).To4()
	if ip == nil {
		return -1
	}
	mask := net.IPv4Mask(ip[0], ip[1], ip[2], ip[3])
	ones, _ := mask.Size()
	return ones
}

// Recv reads one raw IP frame from the device.
func (t *RealTun) Recv() ([]byte, error) {
	buf := make([]byte, t.bufferSize())
	n, err := t.fd.Read(buf)
	if err != nil {
		return nil, simerr.Wrap(err, simerr.KindTapIO, "failed to read from tap")
	}
	return buf[:n], nil
}

// Send writes frame to the device.
func (t *RealTun) Send(frame []byte) error {
	if _, err := t.fd.Write(frame); err != nil {
		return simerr.Wrap(err, simerr.KindTapIO, "failed to write to tap")
	}
	return nil
}

// Close brings the interface down and releases the file descriptor.
func (t *RealTun) Close() error {
	_ = netlink.LinkSetDown(t.link)
	if err := t.fd.Close(); err != nil {
		return simerr.Wrap(err, simerr.KindTapIO, "failed to close tap fd")
	}
	return nil
}

func (t *RealTun) bufferSize() int {
	if t.mtu == 0 {
		return 65536
	}
	return int(t.mtu) + 64
}
