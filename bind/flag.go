// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package bind registers command line flags for the hostguard configuration types.
package bind

import (
	"net/netip"
	"net/url"
	"os"
	"strings"

	"github.com/mmatczuk/anyflag"
	"github.com/saucelabs/hostguard"
	"github.com/saucelabs/hostguard/fileurl"
	"github.com/saucelabs/hostguard/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func ConfigFile(fs *pflag.FlagSet, configFile *string) {
	fs.StringVarP(configFile,
		"config-file", "c", *configFile, "<path>"+
			"Configuration file to load options from. "+
			"The file format is determined by the file extension, if not specified the default format is YAML. "+
			"The following precedence order of configuration sources is used: command flags, environment variables, config file, default values. ")
}

func DNSConfig(fs *pflag.FlagSet, cfg *hostguard.DNSConfig) {
	fs.VarP(anyflag.NewSliceValue[*url.URL](nil, &cfg.Servers, hostguard.ParseDNSAddress),
		"dns-server", "n", "<[udp|tcp://]ip[:port]>"+
			"DNS server(s) to use instead of system default. "+
			"If specified multiple times, the first one is used as primary server, the rest are used as fallbacks. "+
			"The port is optional, if not specified the default port is 53. ")
	fs.DurationVar(&cfg.Timeout,
		"dns-timeout", cfg.Timeout, "Timeout for dialing DNS servers.")
}

func DNSCacheConfig(fs *pflag.FlagSet, cfg *hostguard.DNSCacheConfig) {
	fs.Uint32Var(&cfg.Capacity,
		"dns-cache-size", cfg.Capacity, "<entries>"+
			"Maximum number of cached DNS lookups, at least 64. "+
			"Only successful lookups are cached. "+
			"Setting this to 0 disables the cache. ")
	fs.DurationVar(&cfg.TTL,
		"dns-cache-ttl", cfg.TTL, "Time a cached DNS lookup is used for.")
}

func HostsFile(fs *pflag.FlagSet, path *string) {
	fs.StringVar(path,
		"hosts-file", *path, "<path>"+
			"Hosts file with static name to address mappings, in the /etc/hosts format. "+
			"Names found in the file are not resolved with DNS. ")
}

// Denylist binds the flags that build the denylist and the extra denied address ranges.
func Denylist(fs *pflag.FlagSet, hosts *[]string, file **url.URL, cidrs *[]netip.Prefix) {
	fs.Var(anyflag.NewSliceValue[string](*hosts, hosts, parseDenyHost),
		"deny-host", "<name>"+
			"Host name to deny, subdomains are denied as well. "+
			"The flag can be specified multiple times. "+
			"The names instance-data and metadata.google.internal are always denied. ")
	fs.Var(anyflag.NewValueWithRedact[*url.URL](*file, file, fileurl.ParseFilePathOrURL, RedactURL),
		"deny-hosts-file", "<path or URL>"+
			"File with host names to deny, in addition to --deny-host. "+
			"It is either a YAML document with hosts and cidrs lists, or one name or CIDR per line, # starts a comment. "+
			"It can be a local file, a data URI or an http(s) URL, you can also use '-' to read from stdin. ")
	fs.Var(anyflag.NewSliceValue[netip.Prefix](*cidrs, cidrs, hostguard.ParseDenyPrefix),
		"deny-cidr", "<cidr or ip>"+
			"Address range to deny in addition to link-local addresses. "+
			"Use it to deny loopback or private networks, e.g. --deny-cidr 127.0.0.0/8 --deny-cidr 10.0.0.0/8. "+
			"The flag can be specified multiple times. ")
}

func parseDenyHost(val string) (string, error) {
	if _, err := hostguard.NewDenylist(val); err != nil {
		return "", err
	}
	return val, nil
}

func HTTPTransportConfig(fs *pflag.FlagSet, cfg *hostguard.HTTPTransportConfig) {
	fs.DurationVar(&cfg.DialTimeout,
		"http-dial-timeout", cfg.DialTimeout,
		"The maximum amount of time a dial will wait for a connect to complete. "+
			"With or without a timeout, the operating system may impose its own earlier timeout. For instance, TCP timeouts are often around 3 minutes. ")

	fs.DurationVar(&cfg.HandshakeTimeout,
		"http-tls-handshake-timeout", cfg.HandshakeTimeout,
		"The maximum amount of time waiting to wait for a TLS handshake. Zero means no limit.")

	fs.DurationVar(&cfg.IdleConnTimeout,
		"http-idle-conn-timeout", cfg.IdleConnTimeout,
		"The maximum amount of time an idle (keep-alive) connection will remain idle before closing itself. "+
			"Zero means no limit. ")

	fs.DurationVar(&cfg.ResponseHeaderTimeout,
		"http-response-header-timeout", cfg.ResponseHeaderTimeout,
		"The amount of time to wait for a server's response headers after fully writing the request (including its body, if any). "+
			"This time does not include the time to read the response body. "+
			"Zero means no limit. ")

	fs.BoolVar(&cfg.InsecureSkipVerify, "insecure", cfg.InsecureSkipVerify,
		"Don't verify the server's certificate chain and host name. "+
			"Enable to work with self-signed certificates. ")

	fs.StringSliceVar(&cfg.CACertFiles, "cacert-file", cfg.CACertFiles, "<path>"+
		"Add your own CA certificates to verify against. "+
		"The system root certificates will be used in addition to any certificates in this list. "+
		"The flag can be specified multiple times. ")
}

func ClientConfig(fs *pflag.FlagSet, cfg *hostguard.ClientConfig) {
	HTTPTransportConfig(fs, &cfg.HTTPTransportConfig)

	fs.DurationVar(&cfg.Timeout,
		"http-timeout", cfg.Timeout,
		"Time limit for a request including redirects and reading the response body. Zero means no limit.")
	fs.IntVar(&cfg.MaxRedirects,
		"max-redirects", cfg.MaxRedirects, "<count>"+
			"Maximum number of redirects to follow, every redirect is checked before it is followed. "+
			"Setting this to 0 disables redirects. ")
}

func FetchConfig(fs *pflag.FlagSet, cfg *hostguard.FetchConfig) {
	fs.Int64Var(&cfg.MaxBodySize,
		"fetch-max-body-size", cfg.MaxBodySize, "<bytes>"+
			"Maximum number of response body bytes returned by the fetch endpoint. ")
}

func HTTPServerConfig(fs *pflag.FlagSet, cfg *hostguard.HTTPServerConfig, prefix string) {
	namePrefix := prefix
	if namePrefix != "" {
		namePrefix += "-"
	}

	fs.StringVarP(&cfg.Addr,
		namePrefix+"address", "", cfg.Addr, "<host:port>"+
			"The server address to listen on. "+
			"If the host is empty, the server will listen on all available interfaces. ")
	fs.DurationVar(&cfg.ReadHeaderTimeout,
		namePrefix+"read-header-timeout", cfg.ReadHeaderTimeout,
		"The amount of time allowed to read request headers.")
	fs.DurationVar(&cfg.ShutdownTimeout,
		namePrefix+"shutdown-timeout", cfg.ShutdownTimeout,
		"The maximum amount of time to wait for the server to drain connections before closing. "+
			"Zero means no limit. ")
}

func PromNamespace(fs *pflag.FlagSet, namespace *string) {
	fs.StringVar(namespace,
		"prom-namespace", *namespace, "<namespace>"+
			"Prometheus namespace to use for metrics. ")
}

func LogConfig(fs *pflag.FlagSet, cfg *log.Config) {
	fs.Var(newFileValue(&cfg.File,
		hostguard.OpenFileParser(os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600, 0o700)),
		"log-file", "<path>"+
			"Path to the log file, if empty, logs to stdout. ")
	fs.Var(anyflag.NewValue[log.Level](cfg.Level, &cfg.Level, log.ParseLevel),
		"log-level", "<error|warn|info|debug>"+
			"Log level. ")
	fs.Var(anyflag.NewValue[log.Format](cfg.Format, &cfg.Format, log.ParseFormat),
		"log-format", "<text|json>"+
			"Log format. ")
}

// fileValue fixes the String method of anyflag.Value[*os.File], a nil file is an empty string.
type fileValue struct {
	*anyflag.Value[*os.File]
	f **os.File
}

func newFileValue(f **os.File, p func(val string) (*os.File, error)) pflag.Value {
	if f == nil {
		panic("nil pointer")
	}
	return &fileValue{anyflag.NewValue[*os.File](*f, f, p), f}
}

func (v *fileValue) String() string {
	if *v.f == nil {
		return ""
	}
	return (*v.f).Name()
}

func MarkFlagHidden(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.Flags().MarkHidden(name); err != nil {
			panic(err)
		}
	}
}

func AutoMarkFlagFilename(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.HasPrefix(f.Usage, "<path") ||
			strings.HasSuffix(f.Name, "-file") {
			if err := cmd.MarkFlagFilename(f.Name); err != nil {
				panic(err)
			}
		}
	})
}
