package net

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
)

// ShareScheme prefixes links that open a canvas on a relay.
const ShareScheme = "sketchboard://"

// OutgoingIP finds the preferred local IP address for the host to share.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet; look at local interfaces instead.
		return localIPFallback()
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// localIPFallback is used on networks without internet access.
func localIPFallback() string {
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, address := range addrs {
			if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	log.Println("[NET] no suitable local IP found, share link will use loopback")
	return "127.0.0.1"
}

// ShareLink builds a link others can pass to "sketchboard draw".
func ShareLink(host string, port int, canvasID string) string {
	return fmt.Sprintf("%s%s/%s", ShareScheme, net.JoinHostPort(host, fmt.Sprint(port)), url.PathEscape(canvasID))
}

// ParseShareLink splits a share link into the relay's http URL and the
// canvas id.
func ParseShareLink(link string) (serverURL, canvasID string, err error) {
	rest, ok := strings.CutPrefix(link, ShareScheme)
	if !ok {
		return "", "", fmt.Errorf("not a share link: %q", link)
	}
	host, id, _ := strings.Cut(strings.TrimSuffix(rest, "/"), "/")
	if host == "" || id == "" {
		return "", "", fmt.Errorf("share link %q needs host and canvas", link)
	}
	canvasID, err = url.PathUnescape(id)
	if err != nil {
		return "", "", fmt.Errorf("share link canvas: %w", err)
	}
	return "http://" + host, canvasID, nil
}
