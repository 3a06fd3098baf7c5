package worker

import (
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// newFetchClient 抓取源内容用的客户端；默认拒绝连接内网地址，重定向同样受限
func newFetchClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: timeout}
	if !allowPrivate {
		dialer.Control = refusePrivateAddr
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: transport}
}

// refusePrivateAddr 在解析后的地址上检查，避免 DNS 指向内网
func refusePrivateAddr(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("fetch source: unresolved address %q", address)
	}
	if blockedIP(ip) {
		return fmt.Errorf("fetch source: address %s is not allowed", ip)
	}
	return nil
}

func blockedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified()
}
